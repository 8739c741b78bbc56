package offscreen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gogpu/gglive/event"
)

// Input is one scripted window event, posted After the previous one.
type Input struct {
	After time.Duration
	Event event.WindowEvent
}

var scriptKeys = map[string]event.Key{
	"left":   event.KeyLeft,
	"right":  event.KeyRight,
	"up":     event.KeyUp,
	"down":   event.KeyDown,
	"space":  event.KeySpace,
	"escape": event.KeyEscape,
}

// ParseScript parses a comma-separated input script:
//
//	wait:DURATION   delay the next input
//	wheel:Y         line scroll
//	pixels:Y        pixel scroll
//	pinch:DELTA
//	pan:DX:DY
//	key:NAME        press of left, right, up, down, space or escape
//	resize:WxH
//	redraw
//	close
//
// For example "wait:100ms,wheel:2,key:left,wait:1s,close".
func ParseScript(s string) ([]Input, error) {
	var out []Input
	var wait time.Duration
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(tok, ":")
		var ev event.WindowEvent
		switch cmd {
		case "wait":
			d, err := time.ParseDuration(arg)
			if err != nil || d < 0 {
				return nil, fmt.Errorf("offscreen: script %q: bad duration", tok)
			}
			wait += d
			continue
		case "wheel", "pixels":
			y, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, fmt.Errorf("offscreen: script %q: %w", tok, err)
			}
			unit := event.LineDelta
			if cmd == "pixels" {
				unit = event.PixelDelta
			}
			ev = event.MouseWheel{Unit: unit, Y: y}
		case "pinch":
			d, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, fmt.Errorf("offscreen: script %q: %w", tok, err)
			}
			ev = event.PinchGesture{Delta: d}
		case "pan":
			xs, ys, ok := strings.Cut(arg, ":")
			dx, errX := strconv.ParseFloat(xs, 64)
			dy, errY := strconv.ParseFloat(ys, 64)
			if !ok || errX != nil || errY != nil {
				return nil, fmt.Errorf("offscreen: script %q: want pan:DX:DY", tok)
			}
			ev = event.PanGesture{DX: dx, DY: dy}
		case "key":
			k, ok := scriptKeys[strings.ToLower(arg)]
			if !ok {
				return nil, fmt.Errorf("offscreen: script %q: unknown key", tok)
			}
			ev = event.KeyboardInput{Key: k, Pressed: true}
		case "resize":
			ws, hs, ok := strings.Cut(arg, "x")
			w, errW := strconv.Atoi(ws)
			h, errH := strconv.Atoi(hs)
			if !ok || errW != nil || errH != nil {
				return nil, fmt.Errorf("offscreen: script %q: want resize:WxH", tok)
			}
			ev = event.Resized{Width: w, Height: h}
		case "redraw":
			ev = event.RedrawRequested{}
		case "close":
			ev = event.CloseRequested{}
		default:
			return nil, fmt.Errorf("offscreen: script %q: unknown input", tok)
		}
		out = append(out, Input{After: wait, Event: ev})
		wait = 0
	}
	return out, nil
}
