// client.go contains the transport for a brightspace (d2l) instance, it only fetches pages,
// parsing them is done by the rest of the package.

package d2l

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"brightspace-helper/internal/components/assert"
	"brightspace-helper/internal/components/telemetry"
	"brightspace-helper/lib/restyutil"
	libtelemetry "brightspace-helper/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch_text     = "client.fetch-text"
	report_client_parse_document = "client.parse-document"
)

// HttpError is returned when a page responds with a non-success status.
type HttpError struct {
	Status int
	Url    string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("fetch %s: http %d", e.Url, e.Status)
}

// GradesPath is the "my grades" page of a course.
func GradesPath(ou string) string {
	return "/d2l/lms/grades/my_grades/main.d2l?ou=" + url.QueryEscape(ou)
}

// CalendarPath is the list view of a course calendar.
func CalendarPath(ou string) string {
	return fmt.Sprintf("/d2l/le/calendar/%s/home/list", url.PathEscape(ou))
}

// HomePath is the dashboard holding the enrollment cards.
const HomePath = "/d2l/home"

type ClientOptions struct {
	BaseUrl string
	// Cookie is sent as is, it carries an already logged in session.
	Cookie            string
	RequestsPerSecond float64
	Timeout           time.Duration
	// Dump receives every http exchange when set.
	Dump restyutil.Output
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	tel telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("d2l", tel)

	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if parsedBaseUrl.Scheme == "" || parsedBaseUrl.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", opts.BaseUrl)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimRight(opts.BaseUrl, "/"))
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)

	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	if opts.Cookie != "" {
		httpClient.SetHeader("cookie", opts.Cookie)
	}
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 30
	}
	httpClient.SetTimeout(timeout)

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	// burst >= rps so that no requests are dropped
	rateLimiter := rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, tel)
	libtelemetry.TraceResty(httpClient, "brightspace-helper/d2l")
	restyutil.Dump(httpClient, opts.Dump)

	return &Client{
		BaseUrl: parsedBaseUrl,
		Http:    httpClient,
		tel:     tel,
	}, nil
}

// FetchText returns the body of endpoint, a non-success status is an *HttpError.
func (c *Client) FetchText(ctx context.Context, endpoint string) (string, error) {
	c.tel.ReportDebug(report_client_fetch_text, endpoint)

	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(
			report_client_fetch_text,
			fmt.Errorf("fetch: %w", err),
			endpoint,
		)
		return "", err
	}
	if !res.IsSuccess() {
		err := &HttpError{Status: res.StatusCode(), Url: endpoint}
		c.tel.ReportWarning(report_client_fetch_text, err)
		return "", err
	}
	return res.String(), nil
}

// FetchDocument is FetchText followed by ParseDocument.
func (c *Client) FetchDocument(ctx context.Context, endpoint string) (*goquery.Selection, error) {
	text, err := c.FetchText(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(text)
	if err != nil {
		c.tel.ReportBroken(
			report_client_parse_document,
			fmt.Errorf("parse: %w", err),
			endpoint,
		)
		return nil, err
	}
	return doc, nil
}

// ParseDocument parses an html page into the selection every parser in this package takes.
func ParseDocument(text string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	return doc.Selection, nil
}
