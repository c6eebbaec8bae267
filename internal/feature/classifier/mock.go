// Package classifier provides a stand-in for the leaf-disease model. It picks a
// weighted label the way the demo dashboard does and rejects photos that do
// not look like foliage.
package classifier

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math/rand/v2"
	"sync"

	"agro-advisor/internal/domain"
)

type label struct {
	name       string
	confidence float64
	weight     int
}

var labels = []label{
	{"Healthy", 95, 50},
	{"Powdery Mildew", 85, 15},
	{"Leaf Rust", 78, 15},
	{"Bacterial Blight", 72, 10},
	{"Early Blight", 68, 10},
}

// MinGreenRatio is the share of green pixels a leaf photo must have.
const MinGreenRatio = 0.2

type Mock struct {
	mu  sync.Mutex
	rng *rand.Rand
	// SkipLeafCheck disables the foliage heuristic.
	SkipLeafCheck bool
}

func NewMock(seed uint64) *Mock {
	return &Mock{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

var _ domain.Classifier = (*Mock)(nil)

func (m *Mock) Classify(_ context.Context, img []byte) (string, float64, error) {
	if !m.SkipLeafCheck {
		ratio, ok := GreenRatio(img)
		if ok && ratio < MinGreenRatio {
			return "", 0, domain.Invalid(domain.ErrInvalidImage, "image does not look like a plant leaf")
		}
	}
	m.mu.Lock()
	n := m.rng.IntN(totalWeight())
	m.mu.Unlock()
	for _, l := range labels {
		if n < l.weight {
			return l.name, l.confidence, nil
		}
		n -= l.weight
	}
	return labels[0].name, labels[0].confidence, nil
}

func totalWeight() int {
	t := 0
	for _, l := range labels {
		t += l.weight
	}
	return t
}

// GreenRatio decodes img and returns the share of saturated green pixels.
// ok is false when the format cannot be decoded here.
func GreenRatio(img []byte) (float64, bool) {
	src, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return 0, false
	}
	b := src.Bounds()
	if b.Empty() {
		return 0, false
	}
	// sample at most ~256x256 points
	step := max(1, max(b.Dx(), b.Dy())/256)
	var green, total int
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, _ := src.At(x, y).RGBA()
			if isGreen(r>>8, g>>8, bl>>8) {
				green++
			}
			total++
		}
	}
	return float64(green) / float64(total), true
}

// isGreen: hue 70..170 degrees, saturation and value at least 50/255.
func isGreen(r, g, b uint32) bool {
	hi := max(r, g, b)
	lo := min(r, g, b)
	if hi < 50 {
		return false
	}
	delta := hi - lo
	if delta*255 < 50*hi {
		return false
	}
	if hi != g {
		return false
	}
	// hue for a green-dominant pixel: 60 * ((b - r) / delta + 2)
	hue := 60 * (float64(int(b)-int(r))/float64(delta) + 2)
	return hue >= 70 && hue <= 170
}
