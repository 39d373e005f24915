package main

import "testing"

func TestViewerURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8080", "http://localhost:8080/"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000/"},
	}
	for _, tt := range tests {
		if got := viewerURL(tt.addr); got != tt.want {
			t.Errorf("viewerURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
