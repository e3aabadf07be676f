package notify

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"optionscout/internal/config"
	"optionscout/internal/models"
)

type captureChannel struct {
	name     string
	enabled  bool
	subjects []string
	bodies   []string
	fail     error
}

func (c *captureChannel) Name() string    { return c.name }
func (c *captureChannel) IsEnabled() bool { return c.enabled }
func (c *captureChannel) Send(_ context.Context, subject, body string) error {
	if c.fail != nil {
		return c.fail
	}
	c.subjects = append(c.subjects, subject)
	c.bodies = append(c.bodies, body)
	return nil
}

func sampleRun() models.RankedIdeas {
	expiry := time.Date(2025, 3, 13, 15, 30, 0, 0, time.UTC)
	mk := func(sym string, t models.OptionType, roi float64, tier models.Tier) models.ScoredIdea {
		return models.ScoredIdea{
			Contract: models.OptionContract{
				Symbol: sym, Expiry: expiry, Type: t, Strike: 100,
				Mid: 2.1, SpreadPct: 9.5, OpenInterest: 500, ImpliedVol: 0.30,
			},
			ExpChange: roi * 2.1 / 100, ExpROI: roi, Tier: tier,
		}
	}
	t1 := mk("RELIANCE100CE", models.OptionCall, 19, models.TierOne)
	t2 := mk("RELIANCE104PE", models.OptionPut, 7, models.TierTwo)
	return models.RankedIdeas{
		Tier1: []models.ScoredIdea{t1},
		Tier2: []models.ScoredIdea{t2},
		All:   []models.ScoredIdea{t1, t2},
		Logs:  []string{"TCS: skipped at forecast: insufficient data"},
		Meta: models.RunMeta{
			Timestamp:    time.Date(2025, 3, 6, 10, 0, 0, 0, time.UTC),
			HorizonHours: 2,
			Universe:     []string{"RELIANCE", "TCS"},
		},
	}
}

func TestBuildReportText(t *testing.T) {
	body := BuildReportText(sampleRun())

	for _, want := range []string{"TIER 1", "TIER 2", "RELIANCE100CE", "RELIANCE104PE", "horizon 2h", "skipped at forecast"} {
		if !strings.Contains(body, want) {
			t.Errorf("report missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "WATCH") {
		t.Error("watch section rendered for a run with populated tiers")
	}
}

func TestBuildReportTextEmptyRun(t *testing.T) {
	run := models.RankedIdeas{Meta: models.RunMeta{Timestamp: time.Now(), HorizonHours: 2}}
	body := BuildReportText(run)
	if !strings.Contains(body, "No contracts qualified") {
		t.Errorf("empty-run notice missing:\n%s", body)
	}
}

func TestRenderTables(t *testing.T) {
	var buf bytes.Buffer
	RenderTables(&buf, sampleRun())
	out := buf.String()

	for _, want := range []string{"Tier 1", "Tier 2", "RELIANCE100CE", "+19.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTablesDegenerateROI(t *testing.T) {
	run := sampleRun()
	run.Tier1[0].ExpROI = math.Inf(-1)

	var buf bytes.Buffer
	RenderTables(&buf, run)
	if !strings.Contains(buf.String(), "n/a") {
		t.Error("infinite ROI not rendered as n/a")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRun()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header + 2 rows:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "exp_roi") || !strings.Contains(lines[0], "tier") {
		t.Errorf("header = %s", lines[0])
	}
	if !strings.Contains(lines[1], "RELIANCE100CE") || !strings.Contains(lines[1], "tier1") {
		t.Errorf("first row = %s", lines[1])
	}
}

func TestMultiNotifierFanOut(t *testing.T) {
	a := &captureChannel{name: "a", enabled: true}
	b := &captureChannel{name: "b", enabled: true}
	off := &captureChannel{name: "off", enabled: false}

	mn := &MultiNotifier{}
	mn.AddChannel(a)
	mn.AddChannel(b)
	mn.AddChannel(off)

	if err := mn.SendScanReport(context.Background(), sampleRun()); err != nil {
		t.Fatalf("SendScanReport: %v", err)
	}
	if len(a.subjects) != 1 || len(b.subjects) != 1 {
		t.Fatalf("deliveries: a=%d b=%d", len(a.subjects), len(b.subjects))
	}
	if len(off.subjects) != 0 {
		t.Error("disabled channel received a report")
	}
	if !strings.Contains(a.subjects[0], "1 tier-1") {
		t.Errorf("subject = %s", a.subjects[0])
	}
}

func TestMultiNotifierCollectsChannelErrors(t *testing.T) {
	good := &captureChannel{name: "good", enabled: true}
	bad := &captureChannel{name: "bad", enabled: true, fail: errors.New("smtp down")}

	mn := &MultiNotifier{}
	mn.AddChannel(bad)
	mn.AddChannel(good)

	err := mn.SendScanReport(context.Background(), sampleRun())
	if err == nil || !strings.Contains(err.Error(), "bad: smtp down") {
		t.Fatalf("err = %v", err)
	}
	if len(good.subjects) != 1 {
		t.Error("healthy channel skipped after another channel failed")
	}
}

func TestNewMultiNotifierDisabled(t *testing.T) {
	mn := NewMultiNotifier(config.NotificationConfig{Enabled: false, Email: config.EmailConfig{Enabled: true, SMTPHost: "h", From: "f", To: "t"}})
	if len(mn.channels) != 0 {
		t.Fatalf("channels = %d, want 0 when notifications are disabled", len(mn.channels))
	}
}
