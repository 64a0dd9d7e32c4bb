package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestMotionGate_Disabled(t *testing.T) {
	for _, threshold := range []float64{0, -1} {
		g := NewMotionGate(threshold)

		if g.Enabled() {
			t.Errorf("threshold %f: gate should be disabled", threshold)
		}
		if open, _ := g.Open(nil); !open {
			t.Errorf("threshold %f: disabled gate should always be open", threshold)
		}
		g.Close()
	}
}

func TestMotionGate_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	if open, _ := g.Open(&frame1); !open {
		t.Error("first frame should open the gate")
	}

	if open, changePercent := g.Open(&frame2); open {
		t.Errorf("identical frames should keep the gate shut, changePercent = %f", changePercent)
	}
}

func TestMotionGate_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	blackFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blackFrame.Close()
	whiteFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer whiteFrame.Close()
	whiteFrame.SetTo(gocv.NewScalar(255, 255, 255, 0))

	g.Open(&blackFrame)

	open, changePercent := g.Open(&whiteFrame)
	if !open {
		t.Errorf("black to white should open the gate, changePercent = %f", changePercent)
	}
	if changePercent < 50.0 {
		t.Errorf("changePercent = %f, expected > 50%% for black to white transition", changePercent)
	}
}

func TestMotionGate_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g := NewMotionGate(1.0)
	defer g.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	g.Open(&frame)
	if !g.initialized {
		t.Error("gate should hold a baseline after the first frame")
	}

	g.Reset()
	if g.initialized {
		t.Error("gate should not hold a baseline after Reset")
	}

	if open, _ := g.Open(&frame); !open {
		t.Error("first frame after Reset should open the gate")
	}
}
