package calendar

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

type staticSessions struct {
	days []civil.Date
	err  error
}

func (s staticSessions) Sessions(_, _ civil.Date) ([]civil.Date, error) {
	return s.days, s.err
}

func TestVerifyAgrees(t *testing.T) {
	tc := newTestCalendar(t)
	start, end := date(2021, time.July, 1), date(2021, time.July, 9)

	ours, err := tc.Sessions(start, end)
	if err != nil {
		t.Fatal(err)
	}

	diff, err := tc.Verify(staticSessions{days: ours}, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if !diff.Empty() {
		t.Errorf("Verify = %+v, want empty diff", diff)
	}
}

func TestVerifyReportsDifferences(t *testing.T) {
	tc := newTestCalendar(t)
	start, end := date(2021, time.July, 1), date(2021, time.July, 9)

	ref := staticSessions{days: []civil.Date{
		date(2021, time.July, 1),
		date(2021, time.July, 2),
		date(2021, time.July, 5), // reference trades the observed holiday
		date(2021, time.July, 6),
		// reference closed on the 7th
		date(2021, time.July, 8),
		date(2021, time.July, 9),
	}}

	diff, err := tc.Verify(ref, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(diff.Missing) != 1 || diff.Missing[0] != date(2021, time.July, 5) {
		t.Errorf("Missing = %v, want [2021-07-05]", diff.Missing)
	}
	if len(diff.Extra) != 1 || diff.Extra[0] != date(2021, time.July, 7) {
		t.Errorf("Extra = %v, want [2021-07-07]", diff.Extra)
	}
}

func TestVerifyReferenceError(t *testing.T) {
	tc := newTestCalendar(t)
	boom := errors.New("boom")

	_, err := tc.Verify(staticSessions{err: boom}, date(2021, time.July, 1), date(2021, time.July, 9))
	if !errors.Is(err, boom) {
		t.Errorf("Verify error = %v, want %v", err, boom)
	}
}

func TestNewAlpacaSessions(t *testing.T) {
	s := NewAlpacaSessions("key", "secret", "https://paper-api.alpaca.markets")
	if s == nil || s.client == nil {
		t.Fatal("NewAlpacaSessions returned no client")
	}
}

func TestAlpacaSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/calendar") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date": "2021-07-02", "open": "09:30", "close": "16:00"},
			{"date": "2021-07-06", "open": "09:30", "close": "16:00"}
		]`))
	}))
	defer srv.Close()

	s := NewAlpacaSessions("key", "secret", srv.URL)
	got, err := s.Sessions(date(2021, time.July, 2), date(2021, time.July, 6))
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	want := []civil.Date{date(2021, time.July, 2), date(2021, time.July, 6)}
	if len(got) != len(want) {
		t.Fatalf("Sessions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("session %d = %s, want %s", i, got[i], want[i])
		}
	}
}
