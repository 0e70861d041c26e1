package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
	theme.Active = theme.FlexokiDark
}

func TestLayoutRow(t *testing.T) {
	widths := LayoutRow(100, 3)
	if len(widths) != 3 {
		t.Fatalf("len = %d, want 3", len(widths))
	}
	sum := 0
	for _, w := range widths {
		sum += w
	}
	if sum != 100 {
		t.Errorf("sum = %d, want 100", sum)
	}
	if widths[0] != 34 || widths[2] != 33 {
		t.Errorf("widths = %v, want [34 33 33]", widths)
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow(_, 0) should be nil")
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Ingresos", Value: "$500.00"},
		{Label: "Utilidad", Value: "-$630.00", Color: theme.Active.Red},
		{Label: "Eventos", Value: "2", Delta: "+1 vs feb"},
	}, 90)
	if w := lipgloss.Width(row); w != 90 {
		t.Errorf("row width = %d, want 90", w)
	}
	if !strings.Contains(row, "-$630.00") {
		t.Error("row should contain the net profit value")
	}
}

func TestCardRowPadsShortCards(t *testing.T) {
	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "1\n2\n3\n4\n5", 22)

	joined := CardRow([]string{tall, short})
	lines := strings.Split(joined, "\n")
	if len(lines) != lipgloss.Height(tall) {
		t.Fatalf("joined height = %d, want %d", len(lines), lipgloss.Height(tall))
	}
	for i := lipgloss.Height(short); i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no styling, padding would show unfilled cells", i)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('e'); got != 1 {
		t.Errorf("TabIdxByKey('e') = %d, want 1", got)
	}
	if got := TabIdxByKey('x'); got != len(Tabs)-1 {
		t.Errorf("TabIdxByKey('x') = %d, want settings", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestRenderTabBarWidth(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 100, "2025")
		if w := lipgloss.Width(bar); w != 100 {
			t.Errorf("active=%d: width = %d, want 100", active, w)
		}
		if !strings.Contains(bar, "2025") {
			t.Errorf("active=%d: year label missing", active)
		}
	}
}

func TestHBarsNegative(t *testing.T) {
	out := HBars([]Bar{
		{Label: model.SpanishMonths[0], Value: 500, Text: "$500"},
		{Label: model.SpanishMonths[1], Value: -630, Text: "-$630"},
		{Label: model.SpanishMonths[2], Value: 0},
	}, 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 40 {
			t.Errorf("line %d width = %d, want 40", i, w)
		}
	}
	if strings.Contains(lines[2], "█") {
		t.Error("zero value should draw no bar")
	}
}

func TestSparkline(t *testing.T) {
	out := Sparkline([]float64{0, 5, 10, -3}, theme.Active.Accent)
	if w := lipgloss.Width(out); w != 4 {
		t.Errorf("width = %d, want 4", w)
	}
	if Sparkline(nil, theme.Active.Accent) != "" {
		t.Error("empty input should render nothing")
	}
}

func TestProgressBarNil(t *testing.T) {
	out := ProgressBar("Cierre", nil, 8, 20)
	if !strings.Contains(out, "n/a") {
		t.Errorf("nil ratio should render n/a, got %q", out)
	}
	r := 0.5
	if out := ProgressBar("Cierre", &r, 8, 20); !strings.Contains(out, "50%") {
		t.Errorf("0.5 should render 50%%, got %q", out)
	}
}
