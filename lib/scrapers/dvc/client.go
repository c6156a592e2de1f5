package dvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coursefinder-backend/lib/catalog"
	"coursefinder-backend/lib/htmlutil"
	"coursefinder-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/scrapers/dvc")

type ClientOptions struct {
	// BaseUrl of the course search site.
	BaseUrl string
}

type Client struct {
	http    *resty.Client
	baseUrl string
}

func NewClient(opts ClientOptions) Client {
	http := resty.New().
		SetBaseURL(opts.BaseUrl).
		SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(http, "lib/scrapers/dvc")
	return Client{http: http, baseUrl: opts.BaseUrl}
}

// FetchSectionsText pulls the search results page for one course and
// flattens its schedule table into the semicolon-delimited text format
// that ParseSectionsText consumes.
func (c Client) FetchSectionsText(ctx context.Context, term, courseCode string) (string, error) {
	ctx, span := tracer.Start(ctx, "FetchSectionsText")
	defer span.End()
	span.SetAttributes(
		attribute.String("term", term),
		attribute.String("course_code", courseCode),
	)

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("term", term).
		SetQueryParam("keyword", courseCode).
		Get("/Student/Courses/Search")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("fetch sections: %w", err)
	}
	if res.IsError() {
		err := fmt.Errorf("fetch sections: status %s", res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("parse sections page: %w", err)
	}

	var out strings.Builder
	fmt.Fprintf(
		&out, "%s sections (%s):\n",
		courseCode, time.Now().Format("2006-01-02T15:04:05"),
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := htmlutil.RowsText(table, delim)
		if len(rows) < 2 {
			return true
		}
		for _, row := range rows {
			out.WriteString(row)
			out.WriteString("\n")
		}
		return false
	})

	return out.String(), nil
}

// FetchCourse fetches and parses one course's sections.
func (c Client) FetchCourse(ctx context.Context, term, courseCode string) (*catalog.Course, error) {
	text, err := c.FetchSectionsText(ctx, term, courseCode)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("dvc_%s_%s.txt", term, courseCode)
	return ParseSectionsText(filename, text)
}
