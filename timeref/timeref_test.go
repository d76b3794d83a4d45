package timeref_test

import (
	"testing"
	"time"

	"github.com/mindwell/sage/timeref"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.November, 18, 15, 30, 0, 0, time.Local)
	}
}

func TestExtract_Keywords(t *testing.T) {
	r := timeref.NewWithClock(fixedClock())

	expr, ok := r.Extract("我昨天去跑步了")
	if !ok || expr != "昨天" {
		t.Fatalf("expected 昨天, got %q ok=%v", expr, ok)
	}

	// Named seasons outrank relative-year words: 今年暑假 anchors on 暑假.
	expr, ok = r.Extract("我今年暑假做了3个月的实习")
	if !ok || expr != "暑假" {
		t.Fatalf("expected 暑假, got %q ok=%v", expr, ok)
	}

	expr, ok = r.Extract("去年发生了很多事")
	if !ok || expr != "去年" {
		t.Fatalf("expected 去年, got %q ok=%v", expr, ok)
	}
}

func TestExtract_AbsoluteDates(t *testing.T) {
	r := timeref.NewWithClock(fixedClock())

	expr, ok := r.Extract("2025-06-01那天我很开心")
	if !ok || expr != "2025-06-01" {
		t.Fatalf("expected 2025-06-01, got %q ok=%v", expr, ok)
	}

	expr, ok = r.Extract("我们2024年3月5日见过面")
	if !ok || expr != "2024年3月5日" {
		t.Fatalf("expected 2024年3月5日, got %q ok=%v", expr, ok)
	}
}

func TestExtract_None(t *testing.T) {
	r := timeref.NewWithClock(fixedClock())
	if expr, ok := r.Extract("我最近感到很焦虑"); ok {
		t.Fatalf("expected no expression, got %q", expr)
	}
}

func TestResolve_RelativeKeywords(t *testing.T) {
	now := fixedClock()()
	r := timeref.NewWithClock(fixedClock())

	got, ok := r.Resolve("昨天")
	if !ok {
		t.Fatal("昨天 should resolve")
	}
	if want := now.Add(-24 * time.Hour); !got.Equal(want) {
		t.Errorf("昨天: expected %v, got %v", want, got)
	}

	got, ok = r.Resolve("今天")
	if !ok || !got.Equal(now) {
		t.Errorf("今天: expected %v, got %v ok=%v", now, got, ok)
	}

	got, ok = r.Resolve("暑假")
	if !ok {
		t.Fatal("暑假 should resolve")
	}
	if got.Month() != time.July || got.Day() != 1 || got.Year() != now.Year() {
		t.Errorf("暑假: expected July 1 this year, got %v", got)
	}
}

func TestResolve_AbsoluteDates(t *testing.T) {
	r := timeref.NewWithClock(fixedClock())

	got, ok := r.Resolve("2025-06-01")
	if !ok {
		t.Fatal("2025-06-01 should resolve")
	}
	if want := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	got, ok = r.Resolve("2024年3月5日")
	if !ok || got.Year() != 2024 || got.Month() != time.March || got.Day() != 5 {
		t.Errorf("2024年3月5日: got %v ok=%v", got, ok)
	}

	got, ok = r.Resolve("3/5/2024")
	if !ok || got.Year() != 2024 || got.Month() != time.March || got.Day() != 5 {
		t.Errorf("3/5/2024: got %v ok=%v", got, ok)
	}
}

func TestResolve_ExtractableButUnresolvable(t *testing.T) {
	r := timeref.NewWithClock(fixedClock())

	for _, expr := range []string{"上周", "明年", "春节", "6月1日"} {
		if _, ok := r.Resolve(expr); ok {
			t.Errorf("%s should not resolve", expr)
		}
	}
}

func TestResolve_Garbage(t *testing.T) {
	r := timeref.NewWithClock(fixedClock())
	if _, ok := r.Resolve("13/45/2024"); ok {
		t.Error("out-of-range date should not resolve")
	}
	if _, ok := r.Resolve("someday"); ok {
		t.Error("unknown expression should not resolve")
	}
}
