package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"market-pulse/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/trace"
)

const defaultCalendarURL = "https://tradingeconomics.com/calendar"

// targetIndicators is the fixed set of US releases the dashboard tracks.
var targetIndicators = []string{
	"Unemployment Rate",
	"ISM Manufacturing PMI",
	"Core Inflation Rate YoY",
	"Manufacturing PMI",
	"U-6 Unemployment Rate",
	"Non Farm Payrolls",
	"Fed Interest Rate Decision",
	"GDP Growth Rate",
	"CPI YoY",
	"PPI YoY",
	"Retail Sales MoM",
	"Industrial Production MoM",
}

// CalendarProvider scrapes the public economic-calendar page for upcoming
// and released United States indicators.
type CalendarProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewCalendarProvider(tracer trace.Tracer) *CalendarProvider {
	return &CalendarProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: defaultCalendarURL,
		tracer:  tracer,
	}
}

// SetBaseURL overrides the calendar page URL. Empty values are ignored.
func (p *CalendarProvider) SetBaseURL(url string) {
	if url != "" {
		p.baseURL = url
	}
}

// FetchUS downloads the calendar page and extracts the tracked United
// States rows. Rows that fail to parse are skipped, never fatal.
func (p *CalendarProvider) FetchUS(ctx context.Context) ([]domain.EconomicIndicatorRow, error) {
	_, span := p.tracer.Start(ctx, "calendar.fetch-us")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch calendar: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: calendar fetch error %d", domain.ErrTransport, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse calendar page: %w", err)
	}

	return parseCalendar(doc), nil
}

// parseCalendar walks table rows in document order: date-header rows carry
// the date for the data rows that follow them.
func parseCalendar(doc *goquery.Document) []domain.EconomicIndicatorRow {
	var rows []domain.EconomicIndicatorRow
	currentDate := ""

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if th := tr.Find(`th[colspan="3"]`); th.Length() > 0 {
			if text := strings.TrimSpace(th.First().Text()); text != "" {
				currentDate = formatCalendarDate(text)
			}
			return
		}

		if _, ok := tr.Attr("data-id"); !ok {
			return
		}
		country, _ := tr.Attr("data-country")
		if !strings.EqualFold(strings.TrimSpace(country), "united states") {
			return
		}

		cells := tr.Find("td")
		if cells.Length() < 5 {
			return
		}

		event := strings.TrimSpace(cells.Eq(4).Text())
		if !matchesTarget(event) {
			return
		}

		timeCell := strings.TrimSpace(cells.Eq(0).Text())
		if currentDate == "" || timeCell == "" {
			return
		}

		rows = append(rows, domain.EconomicIndicatorRow{
			Date:      currentDate,
			Time:      formatCalendarTime(timeCell),
			EventName: event,
			Actual:    cleanValue(cellText(cells, 5)),
			Previous:  cleanValue(cellText(cells, 6)),
			Consensus: cleanValue(cellText(cells, 7)),
			Forecast:  cleanValue(cellText(cells, 8)),
		})
	})

	return rows
}

func matchesTarget(event string) bool {
	lower := strings.ToLower(event)
	for _, target := range targetIndicators {
		if strings.Contains(lower, strings.ToLower(target)) {
			return true
		}
	}
	return false
}

func cellText(cells *goquery.Selection, i int) string {
	if i >= cells.Length() {
		return ""
	}
	return strings.TrimSpace(cells.Eq(i).Text())
}

// formatCalendarDate converts "Monday March 31 2025" to "2025-03-31".
// Unparseable headers pass through unchanged.
func formatCalendarDate(s string) string {
	t, err := time.Parse("Monday January 2 2006", s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

// formatCalendarTime converts a 12-hour cell like "8:30 AM" to "08:30:00",
// defaulting to midnight on parse failure.
func formatCalendarTime(s string) string {
	t, err := time.Parse("3:04 PM", s)
	if err != nil {
		return "00:00:00"
	}
	return t.Format("15:04") + ":00"
}

func cleanValue(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "N/A" {
		return nil
	}
	return &s
}
