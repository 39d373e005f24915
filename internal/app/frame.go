package app

import (
	"errors"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handmade/internal/board"
	"github.com/ayusman/handmade/internal/detector"
	"github.com/ayusman/handmade/internal/preprocess"
	"github.com/ayusman/handmade/internal/recorder"
	"github.com/ayusman/handmade/internal/store"
)

// processFrame runs one frame through the pipeline. It returns the
// annotated frame when one was drawn, or an empty Mat; the caller closes it.
func (a *App) processFrame(frame gocv.Mat) gocv.Mat {
	mask, err := a.cfg.Preprocessor.Process(frame)
	if err != nil {
		mask.Close()
		if !errors.Is(err, preprocess.ErrLearningBackground) {
			a.logger.Warn().Err(err).Msg("preprocessing failed, skipping frame")
		}
		a.countSkipped()
		return gocv.NewMat()
	}
	defer mask.Close()

	res, err := a.cfg.Detector.Detect(&mask)
	if err != nil {
		a.logger.Warn().Err(err).Msg("detection failed, skipping frame")
		a.countSkipped()
		return gocv.NewMat()
	}

	size := image.Pt(frame.Cols(), frame.Rows())
	session, stored := a.ensureSession(size)

	up := a.cfg.Board.UpdateInFrame(res.Tips, res.Palm, size)

	a.mu.Lock()
	index := a.frames
	a.frames++
	prev := a.prevEvent
	a.prevEvent = up.Event
	a.lastEvent = up.Event
	a.lastTips = len(res.Tips)
	a.mu.Unlock()

	if up.Event != board.EventNone && up.Event != board.EventMove {
		a.logger.Debug().Int("frame", index).Str("event", up.Event.String()).Int("tips", len(res.Tips)).Msg("board updated")
	}

	if stored {
		a.recordFrame(session, index, res, up)
	}
	a.dispatchHooks(session, index, prev, up)

	a.dump(recorder.StageProcessed, index, mask)

	var annotated gocv.Mat
	if a.wantsAnnotation() {
		annotated = frame.Clone()
		detector.Annotate(&annotated, res, true)
		a.dump(recorder.StageDetected, index, annotated)
	} else {
		annotated = gocv.NewMat()
	}

	if a.cfg.Recorder.Enabled() {
		a.cfg.Board.WithCanvas(func(c board.Canvas) {
			if mc, ok := c.(*board.MatCanvas); ok {
				a.dump(recorder.StageBoard, index, mc.Mat())
			}
		})
	}

	a.publish(session, index, res, up, annotated)
	return annotated
}

func (a *App) wantsAnnotation() bool {
	if a.cfg.Preview || a.cfg.Recorder.Enabled() {
		return true
	}
	return a.cfg.Publisher != nil && a.cfg.Publisher.Watching()
}

func (a *App) dump(stage recorder.Stage, index int, img gocv.Mat) {
	if err := a.cfg.Recorder.Write(stage, index, img); err != nil {
		a.logger.Warn().Err(err).Str("stage", string(stage)).Msg("frame dump failed")
	}
}

func (a *App) recordFrame(session string, index int, res detector.Result, up board.Update) {
	rec := store.FrameRecord{
		Frame: store.Frame{
			SessionID:  session,
			Index:      index,
			Tips:       len(res.Tips),
			PalmX:      res.Palm.Center.X,
			PalmY:      res.Palm.Center.Y,
			PalmRadius: res.Palm.Radius,
			Event:      up.Event.String(),
		},
	}

	switch up.Event {
	case board.EventDraw:
		rec.Stroke = &store.Stroke{
			X1: up.Segment.From.X,
			Y1: up.Segment.From.Y,
			X2: up.Segment.To.X,
			Y2: up.Segment.To.Y,
		}
	case board.EventErase:
		rec.Erase = &store.Erase{
			X:      up.Erased.Center.X,
			Y:      up.Erased.Center.Y,
			Radius: up.Erased.Radius,
		}
	}

	if err := a.cfg.Store.RecordFrame(rec); err != nil {
		a.logger.Error().Err(err).Int("frame", index).Msg("failed to record frame")
	}
}

func (a *App) publish(session string, index int, res detector.Result, up board.Update, annotated gocv.Mat) {
	p := a.cfg.Publisher
	if p == nil || !p.Watching() {
		return
	}

	msg := TipsMessage{
		Session:   session,
		Frame:     index,
		Event:     up.Event.String(),
		Tips:      res.Tips,
		Palm:      res.Palm,
		Timestamp: time.Now().UnixMilli(),
	}
	if msg.Tips == nil {
		msg.Tips = []image.Point{}
	}
	if up.Event == board.EventMove || up.Event == board.EventDraw {
		tip := up.Tip
		msg.Cursor = &tip
	}
	p.PublishTips(msg)

	if !annotated.Empty() {
		if buf, err := gocv.IMEncode(gocv.JPEGFileExt, annotated); err == nil {
			p.PublishFrame(append([]byte(nil), buf.GetBytes()...))
			buf.Close()
		} else {
			a.logger.Debug().Err(err).Msg("failed to encode frame")
		}
	}

	if jpeg, err := a.cfg.Board.EncodeJPEG(); err == nil {
		p.PublishBoard(jpeg)
	} else {
		a.logger.Debug().Err(err).Msg("failed to encode board")
	}
}
