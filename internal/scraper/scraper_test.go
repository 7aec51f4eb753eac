package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const snowReportHTML = `
<html>
	<head>
		<script>var forecast = {"Temperature": 99};</script>
		<style>.Temperature { color: red; }</style>
	</head>
	<body>
		<section>
			<h3>Right Now</h3>
			<div>19 °F</div><div>Clear</div>
			<div>feels like 10 °F</div>
			<div>12 mph NW gusts to 20</div>
		</section>
		<section>
			<h3>Snow Summary</h3>
			<div>Last 24 Hours</div><div>6"</div>
			<div>Next 1-5 Days</div><div>14"</div>
		</section>
		<section>
			<h3>Hourly</h3>
			<div>1pm</div><div>2pm</div><div>3pm</div><div>4pm</div><div>5pm</div><div>6pm</div><div>7pm</div>
			<div>Temperature</div><div>20°</div><div>21°</div><div>22°</div><div>23°</div><div>24°</div><div>25°</div><div>26°</div>
			<div>Feels Like</div><div>15°</div><div>16°</div>
			<div>Wind</div><div>SW 5</div><div>SW 7</div><div>W 10</div>
			<div>Cloud Cover</div><div>40%</div><div>50%</div><div>60%</div><div>70%</div>
			<div>Precip</div><div>0%</div>
		</section>
	</body>
</html>
`

func TestFetch(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		wantError  bool
		wantText   []string
	}{
		{
			name:       "successful fetch",
			body:       snowReportHTML,
			statusCode: http.StatusOK,
			wantText:   []string{"Right Now 19 °F Clear", `Last 24 Hours 6"`, "Cloud Cover 40% 50%"},
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusServiceUnavailable,
			wantError:  true,
		},
		{
			name:       "empty page",
			body:       `<html><body><p>Maintenance</p></body></html>`,
			statusCode: http.StatusOK,
			wantText:   []string{"Maintenance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "Mozilla") {
					t.Errorf("User-Agent = %q, should look like a browser", userAgent)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s := New(server.URL, time.Second)
			text, err := s.Fetch(context.Background())

			if tt.wantError {
				if !errors.Is(err, ErrSourceUnavailable) {
					t.Errorf("Fetch() error = %v, want ErrSourceUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			for _, want := range tt.wantText {
				if !strings.Contains(text, want) {
					t.Errorf("Fetch() text missing %q in:\n%s", want, text)
				}
			}
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer server.Close()

	s := New(server.URL, 20*time.Millisecond)
	if _, err := s.Fetch(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Fetch() error = %v, want ErrSourceUnavailable", err)
	}
}

func TestPageText_DropsScripts(t *testing.T) {
	text, err := pageText(strings.NewReader(snowReportHTML))
	if err != nil {
		t.Fatalf("pageText() error: %v", err)
	}
	if strings.Contains(text, "99") || strings.Contains(text, "color") {
		t.Errorf("pageText() kept script/style content: %s", text)
	}
}

func TestNew(t *testing.T) {
	s := New("", 0)

	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.client == nil {
		t.Error("scraper client is nil")
	}
	if s.URL() != SnowSummaryURL {
		t.Errorf("scraper url = %q, want %q", s.URL(), SnowSummaryURL)
	}
}
