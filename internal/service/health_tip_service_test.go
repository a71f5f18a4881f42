package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestTipService(t *testing.T, language string, handler func(*http.Request) (*http.Response, error)) *HealthTipService {
	t.Helper()
	settings := NewSystemSettingService(nil, SystemSettings{Language: language, AIProvider: AIProviderOpenAI, OpenAIAPIKey: "sk-test"})
	svc := NewHealthTipService(settings)
	svc.SetOpenAIBaseURL("https://openai.test/v1")
	svc.SetHTTPClient(fakeHTTPClient{handler: handler})
	svc.SetClock(func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) })
	return svc
}

func TestDailyTipCachesSuccess(t *testing.T) {
	var calls atomic.Int32
	svc := newTestTipService(t, "en", func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, chatCompletionBody(t, "Keep a **water bottle** near your pills.")), nil
	})

	tip := svc.DailyTip(context.Background())
	if tip.Fallback {
		t.Fatalf("unexpected fallback %+v", tip)
	}
	if tip.Date != "2024-01-01" || tip.Language != "en" {
		t.Fatalf("unexpected tip header %+v", tip)
	}
	if !strings.Contains(tip.HTML, "<strong>water bottle</strong>") {
		t.Fatalf("expected rendered markdown, got %q", tip.HTML)
	}

	again := svc.DailyTip(context.Background())
	if again.Text != tip.Text {
		t.Fatalf("expected cached tip, got %q", again.Text)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single AI call, got %d", calls.Load())
	}

	svc.SetClock(func() time.Time { return time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC) })
	svc.DailyTip(context.Background())
	if calls.Load() != 2 {
		t.Fatalf("expected a new call for the next day, got %d", calls.Load())
	}
}

func TestDailyTipFallbackOnFailure(t *testing.T) {
	var calls atomic.Int32
	svc := newTestTipService(t, "th", func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, errors.New("network down")
	})

	tip := svc.DailyTip(context.Background())
	if !tip.Fallback || tip.Text != "อย่าลืมทานยาให้ตรงเวลานะครับ" {
		t.Fatalf("unexpected fallback tip %+v", tip)
	}

	svc.DailyTip(context.Background())
	if calls.Load() != 2 {
		t.Fatalf("failures must not be cached, got %d calls", calls.Load())
	}
}

func TestDailyTipFallbackOnEmpty(t *testing.T) {
	svc := newTestTipService(t, "en", func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, chatCompletionBody(t, "  ")), nil
	})

	tip := svc.DailyTip(context.Background())
	if !tip.Fallback || tip.Text != "Take good care of yourself." {
		t.Fatalf("unexpected fallback tip %+v", tip)
	}
}

func TestDailyTipWithoutKey(t *testing.T) {
	svc := NewHealthTipService(NewSystemSettingService(nil, SystemSettings{}))

	tip := svc.DailyTip(context.Background())
	if !tip.Fallback || tip.Language != "th" {
		t.Fatalf("unexpected tip %+v", tip)
	}
}

func TestRenderTipHTMLStripsScripts(t *testing.T) {
	html := renderTipHTML("Drink water <script>alert(1)</script>")
	if strings.Contains(html, "<script>") {
		t.Fatalf("script tag not removed: %q", html)
	}
	if !strings.HasPrefix(html, "<p>") {
		t.Fatalf("expected paragraph, got %q", html)
	}
	if renderTipHTML("   ") != "" {
		t.Fatal("expected empty html for blank text")
	}
}
