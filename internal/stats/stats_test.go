package stats

import (
	"encoding/json"
	"math"
	"testing"
)

func mustGet(t *testing.T, name string, v Value) float64 {
	t.Helper()
	got, ok := v.Get()
	if !ok {
		t.Fatalf("%s unavailable, want a value", name)
	}
	return got
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEmptyLogIsUnavailable(t *testing.T) {
	var samples []float64
	for name, v := range map[string]Value{
		"fastest": Fastest(samples),
		"slowest": Slowest(samples),
		"average": Average(samples),
		"median":  Median(samples),
		"stdev":   Stdev(samples),
		"p25":     Percentile25(samples),
		"p75":     Percentile75(samples),
	} {
		if v.Available() {
			t.Errorf("%s available on empty log", name)
		}
		if v.String() != UnavailableText {
			t.Errorf("%s rendered %q, want %q", name, v.String(), UnavailableText)
		}
	}
	if Accuracy(0, 0).Available() {
		t.Error("accuracy should be unavailable with no inputs")
	}
	if got := PromptRatio(0, 0).String(); got != UnavailableText {
		t.Errorf("prompt ratio %q, want %q", got, UnavailableText)
	}
}

func TestUnavailableDistinctFromZero(t *testing.T) {
	zero := Of(0)
	if !zero.Available() {
		t.Fatal("Of(0) should be available")
	}
	if zero == Unavailable() {
		t.Error("Of(0) must differ from Unavailable()")
	}
	if zero.String() != "0.00" {
		t.Errorf("Of(0) rendered %q, want 0.00", zero.String())
	}
	if got := Accuracy(0, 3); !got.Available() || got.String() != "0.00" {
		t.Errorf("accuracy with zero correct %q, want 0.00", got.String())
	}
}

func TestFourSamples(t *testing.T) {
	samples := []float64{100, 200, 300, 400}
	if got := mustGet(t, "average", Average(samples)); got != 250 {
		t.Errorf("average %v, want 250", got)
	}
	if got := mustGet(t, "median", Median(samples)); got != 250 {
		t.Errorf("median %v, want 250", got)
	}
	if got := mustGet(t, "fastest", Fastest(samples)); got != 100 {
		t.Errorf("fastest %v, want 100", got)
	}
	if got := mustGet(t, "slowest", Slowest(samples)); got != 400 {
		t.Errorf("slowest %v, want 400", got)
	}
	if got := Average(samples).String(); got != "250.00" {
		t.Errorf("average rendered %q, want 250.00", got)
	}
	// k = 3*0.25 = 0.75 -> 100*0.25 + 200*0.75
	if got := mustGet(t, "p25", Percentile25(samples)); !almostEqual(got, 175) {
		t.Errorf("p25 %v, want 175", got)
	}
	if got := mustGet(t, "p75", Percentile75(samples)); !almostEqual(got, 325) {
		t.Errorf("p75 %v, want 325", got)
	}
	if got := Stdev(samples).String(); got != "129.10" {
		t.Errorf("stdev %q, want 129.10", got)
	}
}

func TestMedianOddAndUnsorted(t *testing.T) {
	samples := []float64{300, 100, 200}
	if got := mustGet(t, "median", Median(samples)); got != 200 {
		t.Errorf("median %v, want 200", got)
	}
	if samples[0] != 300 || samples[1] != 100 || samples[2] != 200 {
		t.Errorf("input reordered: %v", samples)
	}
}

func TestStdevNeedsTwoSamples(t *testing.T) {
	if Stdev([]float64{120}).Available() {
		t.Error("stdev of one sample should be unavailable")
	}
	if got := mustGet(t, "stdev", Stdev([]float64{5, 5})); got != 0 {
		t.Errorf("stdev of equal samples %v, want 0", got)
	}
}

func TestPercentileBounds(t *testing.T) {
	logs := [][]float64{
		{42},
		{10, 20},
		{310, 120, 250, 199, 480, 333, 287},
	}
	for _, samples := range logs {
		fastest := mustGet(t, "fastest", Fastest(samples))
		slowest := mustGet(t, "slowest", Slowest(samples))
		if got := mustGet(t, "p0", Percentile(samples, 0)); got != fastest {
			t.Errorf("p0 %v, want fastest %v", got, fastest)
		}
		if got := mustGet(t, "p100", Percentile(samples, 100)); got != slowest {
			t.Errorf("p100 %v, want slowest %v", got, slowest)
		}
		if got := mustGet(t, "p-5", Percentile(samples, -5)); got != fastest {
			t.Errorf("clamped p-5 %v, want %v", got, fastest)
		}
		if got := mustGet(t, "p150", Percentile(samples, 150)); got != slowest {
			t.Errorf("clamped p150 %v, want %v", got, slowest)
		}
	}
}

func TestOrderingProperties(t *testing.T) {
	logs := [][]float64{
		{1},
		{5, 3},
		{1000, 1, 1, 1},
		{250, 260, 240, 900, 120, 130},
	}
	for _, samples := range logs {
		lo := mustGet(t, "fastest", Fastest(samples))
		hi := mustGet(t, "slowest", Slowest(samples))
		avg := mustGet(t, "average", Average(samples))
		med := mustGet(t, "median", Median(samples))
		if avg < lo || avg > hi {
			t.Errorf("%v: average %v outside [%v, %v]", samples, avg, lo, hi)
		}
		if med < lo || med > hi {
			t.Errorf("%v: median %v outside [%v, %v]", samples, med, lo, hi)
		}
	}
}

func TestAccuracyAndPromptRatio(t *testing.T) {
	if got := Accuracy(3, 4).Percent(); got != "75.00%" {
		t.Errorf("accuracy %q, want 75.00%%", got)
	}
	if got := PromptRatio(2, 3).String(); got != "2/3 (66.67%)" {
		t.Errorf("prompt ratio %q, want 2/3 (66.67%%)", got)
	}
}

func TestSummaryJSON(t *testing.T) {
	s := Summarize([]float64{100.456}, 1, 2, 0)
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["fastest_ms"] != 100.46 {
		t.Errorf("fastest_ms %v, want 100.46", decoded["fastest_ms"])
	}
	if decoded["stdev_ms"] != nil {
		t.Errorf("stdev_ms %v, want null", decoded["stdev_ms"])
	}
	if decoded["accuracy_pct"] != 50.0 {
		t.Errorf("accuracy_pct %v, want 50", decoded["accuracy_pct"])
	}
	ratio, ok := decoded["prompt_ratio"].(map[string]any)
	if !ok {
		t.Fatalf("prompt_ratio %T, want object", decoded["prompt_ratio"])
	}
	if ratio["pct"] != nil {
		t.Errorf("prompt_ratio.pct %v, want null", ratio["pct"])
	}
}
