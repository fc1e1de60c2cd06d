package patentscope

import (
	"bytes"
	"context"

	"patsearch-backend/lib/htmlutil"
	"patsearch-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// notFoundMarkers are phrases the portal renders instead of a detail
// view when an identifier does not resolve.
var notFoundMarkers = []string{
	"no record found",
	"document not found",
	"not be found",
	"invalid document",
}

// FetchDetail loads the detail view for one patent identifier and
// extracts the full record, including the detail-only fields. Returns
// ErrPatentNotFound when the portal reports an unknown identifier.
func (c *Client) FetchDetail(ctx context.Context, id string) (Detail, error) {
	ctx, span := tracer.Start(ctx, "client:FetchDetail", trace.WithAttributes(
		attribute.String("patent_id", id),
	))
	defer span.End()

	body, err := c.FetchWithRetry(ctx, detailPath, map[string]string{"docId": id})
	if err != nil {
		return Detail{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Detail{}, err
	}
	return extractDetail(doc, id)
}

func extractDetail(doc *goquery.Document, id string) (Detail, error) {
	root := doc.Selection

	detail := Detail{
		Record: Record{
			ID:                id,
			PublicationNumber: firstValue(root, detailPublicationStrategies),
			Title:             firstValue(root, detailTitleStrategies),
			Abstract:          firstValue(root, detailAbstractStrategies),
			PublicationDate:   firstValue(root, detailDateStrategies),
			Applicants:        unionValues(root, applicantStrategies),
			Inventors:         unionValues(root, inventorStrategies),
			IPCCodes:          unionValues(root, ipcStrategies),
		},
		ApplicationNumber: firstValue(root, applicationNumberStrategies),
		ApplicationDate:   firstValue(root, applicationDateStrategies),
		Claims:            firstValue(root, claimsStrategies),
		Description:       firstValue(root, descriptionStrategies),
		CPCCodes:          unionValues(root, cpcStrategies),
	}

	if detail.PublicationNumber == "" && detail.Title == "" {
		return Detail{}, ErrPatentNotFound
	}
	if textutil.ContainsKeyword(doc.Find("body").Text(), notFoundMarkers) {
		return Detail{}, ErrPatentNotFound
	}
	if detail.ID == "" {
		if href, ok := doc.Find("link[rel=canonical]").Attr("href"); ok {
			detail.ID = htmlutil.DocID(href)
		}
	}
	return detail, nil
}
