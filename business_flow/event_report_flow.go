package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/eventdesk/eventdesk/models"
	"github.com/eventdesk/eventdesk/repository"
	"github.com/eventdesk/eventdesk/utils"
	"github.com/xuri/excelize/v2"
)

// EventReportFlow exports click analytics for the shortlinks an event owns.
type EventReportFlow interface {
	DownloadClicksCSV(ctx context.Context, eventUUID string) (string, []byte, error)
	DownloadClicksExcel(ctx context.Context, eventUUID string) (string, []byte, error)
}

type EventReportFlowImpl struct {
	events repository.EventRepository
	links  repository.ShortLinkRepository
}

func NewEventReportFlow(events repository.EventRepository, links repository.ShortLinkRepository) EventReportFlow {
	return &EventReportFlowImpl{events: events, links: links}
}

// linkClicks is one owned token with its target and recorded clicks.
type linkClicks struct {
	Token  string
	Target string
	Active bool
	Clicks []models.ClickEvent
}

// collect gathers every token owned by the event, in stable token order.
func (f *EventReportFlowImpl) collect(ctx context.Context, eventUUID string) (*models.Event, []linkClicks, error) {
	event, err := f.events.ByUUID(ctx, eventUUID)
	if err != nil {
		return nil, nil, NewBusinessError("EVENT_LOOKUP_FAILED", "Failed to lookup event", err)
	}
	if event == nil {
		return nil, nil, ErrEventNotFound
	}

	metadata, err := f.links.LoadMetadata(ctx)
	if err != nil {
		return nil, nil, NewBusinessError("SHORT_LINK_LOAD_FAILED", "Failed to load shortlink metadata", err)
	}
	targets, err := f.links.LoadTargets(ctx)
	if err != nil {
		return nil, nil, NewBusinessError("SHORT_LINK_LOAD_FAILED", "Failed to load shortlink targets", err)
	}
	analytics, err := f.links.LoadAnalytics(ctx)
	if err != nil {
		return nil, nil, NewBusinessError("SHORT_LINK_LOAD_FAILED", "Failed to load shortlink analytics", err)
	}

	ownerKey := utils.EventOwnerKey(event.UUID)
	out := make([]linkClicks, 0, 4)
	for token, meta := range metadata {
		if meta.OwnerKey != ownerKey {
			continue
		}
		out = append(out, linkClicks{
			Token:  token,
			Target: targets[token],
			Active: meta.Active,
			Clicks: analytics[token],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })

	return event, out, nil
}

func (f *EventReportFlowImpl) DownloadClicksCSV(ctx context.Context, eventUUID string) (string, []byte, error) {
	event, links, err := f.collect(ctx, eventUUID)
	if err != nil {
		return "", nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"token", "target_url", "active", "clicked_at", "user_agent", "referrer", "ip"}
	if err := w.Write(header); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV header", err)
	}

	for _, link := range links {
		active := "false"
		if link.Active {
			active = "true"
		}
		if len(link.Clicks) == 0 {
			// Still one row per link so unclicked links show up in the export.
			record := []string{link.Token, link.Target, active, "", "", "", ""}
			if err := w.Write(record); err != nil {
				return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV row", err)
			}
			continue
		}
		for _, click := range link.Clicks {
			record := []string{link.Token, link.Target, active, click.Timestamp, click.UserAgent, click.Referrer, click.SourceIP}
			if err := w.Write(record); err != nil {
				return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV row", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to flush CSV", err)
	}

	filename := fmt.Sprintf("event_clicks_%s.csv", event.Slug)
	return filename, buf.Bytes(), nil
}

// DownloadClicksExcel builds a workbook with one sheet per owned token.
func (f *EventReportFlowImpl) DownloadClicksExcel(ctx context.Context, eventUUID string) (string, []byte, error) {
	event, links, err := f.collect(ctx, eventUUID)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	header := []string{"clicked_at", "user_agent", "referrer", "ip"}
	for i, link := range links {
		// Tokens are short alphanumerics so they are valid sheet names as is.
		name := link.Token
		if i == 0 {
			xl.SetSheetName(xl.GetSheetName(0), name)
		} else {
			_, _ = xl.NewSheet(name)
		}

		_ = xl.SetSheetRow(name, "A1", &header)
		for ri, click := range link.Clicks {
			record := []string{click.Timestamp, click.UserAgent, click.Referrer, click.SourceIP}
			cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
			_ = xl.SetSheetRow(name, cellRef, &record)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("event_clicks_%s.xlsx", event.Slug)
	return filename, buf.Bytes(), nil
}
