package fixture

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"artnetctl/internal/colour"
	"gopkg.in/yaml.v3"
)

func TestApplyLevelWidens(t *testing.T) {
	c := loadLibrary(t)
	spot := resolve(t, c, "spot", "CMY Spot", 1)
	pan := controlMacro(t, spot, "Pan")
	if err := Apply(pan, LevelValue(128), time.Time{}, 0, nil); err != nil {
		t.Fatal(err)
	}
	if pan.Value != 128*257 {
		t.Errorf("got %d, want %d", pan.Value, 128*257)
	}
	if err := Apply(pan, ControlValue(300), time.Time{}, 0, nil); err != nil {
		t.Fatal(err)
	}
	if pan.Value != 300 {
		t.Errorf("native value got %d, want 300", pan.Value)
	}
}

func TestApplyMismatch(t *testing.T) {
	c := loadLibrary(t)
	par := resolve(t, c, "par", "Generic RGBW Par", 1)
	col := colourMacro(t, par, "Colour")
	if err := Apply(col, ControlValue(5), time.Time{}, 0, nil); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("got %v, want ErrTypeMismatch", err)
	}
	if col.Value != colour.Default {
		t.Errorf("colour changed to %v", col.Value)
	}
	dim := controlMacro(t, par, "Dimmer")
	if err := Apply(dim, ColourValue(colour.RGBA{}), time.Time{}, 0, nil); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("got %v, want ErrTypeMismatch", err)
	}
}

func TestValueEncoding(t *testing.T) {
	b, err := json.Marshal(ControlValue(42))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"ControlValue":42}` {
		t.Errorf("got %s", b)
	}
	b, err = json.Marshal(ColourValue(colour.RGBA{R: 1, G: 2, B: 3, A: 4}))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"ColourValue":[1,2,3,4]}` {
		t.Errorf("got %s", b)
	}

	var v Value
	if err := json.Unmarshal([]byte(`{}`), &v); err == nil {
		t.Error("empty value accepted")
	}

	var y Value
	if err := yaml.Unmarshal([]byte("ColourValue: [9, 8, 7, 6]\n"), &y); err != nil {
		t.Fatal(err)
	}
	if y.Kind != KindColour || y.Colour != (colour.RGBA{R: 9, G: 8, B: 7, A: 6}) {
		t.Errorf("yaml got %+v", y)
	}
}
