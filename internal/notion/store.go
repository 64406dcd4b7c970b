package notion

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pastchais/check-notion-url/internal/linkcheck"
)

// StatusLabels is the closed vocabulary the database's status select accepts.
// The labels are display values owned by the store schema, not internal enum
// names.
type StatusLabels struct {
	Available string
	Redirect  string
	Dead      string
	Error     string
}

// StoreConfig binds a Store to one database and its schema.
type StoreConfig struct {
	// DatabaseID identifies the target collection. Required.
	DatabaseID     string
	TitleProperty  string
	URLProperty    string
	StatusProperty string
	// StatusFilter restricts FetchAll to records whose status select equals
	// this label. Empty fetches everything.
	StatusFilter string
	Labels       StatusLabels
}

// Store implements linkcheck.RecordStore on top of a Notion database.
type Store struct {
	client *Client
	cfg    StoreConfig
	logger *zap.Logger
}

// NewStore builds a Store. The database ID is required; property names and
// labels fall back to sensible defaults.
func NewStore(client *Client, cfg StoreConfig, logger *zap.Logger) (*Store, error) {
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("notion database id must be set")
	}
	if cfg.TitleProperty == "" {
		cfg.TitleProperty = "Name"
	}
	if cfg.URLProperty == "" {
		cfg.URLProperty = "URL"
	}
	if cfg.StatusProperty == "" {
		cfg.StatusProperty = "Status"
	}
	if cfg.Labels.Available == "" {
		cfg.Labels.Available = "Available"
	}
	if cfg.Labels.Redirect == "" {
		cfg.Labels.Redirect = "Redirect"
	}
	if cfg.Labels.Dead == "" {
		cfg.Labels.Dead = "Dead"
	}
	if cfg.Labels.Error == "" {
		cfg.Labels.Error = "Error"
	}
	return &Store{client: client, cfg: cfg, logger: logger}, nil
}

// FetchAll queries the database, following the cursor pagination protocol
// until no continuation cursor remains.
func (s *Store) FetchAll(ctx context.Context) ([]linkcheck.LinkRecord, error) {
	var (
		records []linkcheck.LinkRecord
		cursor  string
	)
	for {
		query := databaseQuery{
			StartCursor: cursor,
			PageSize:    queryPageSize,
		}
		if s.cfg.StatusFilter != "" {
			query.Filter = &queryFilter{
				Property: s.cfg.StatusProperty,
				Select:   &selectFilter{Equals: s.cfg.StatusFilter},
			}
		}

		resp, err := s.client.queryDatabase(ctx, s.cfg.DatabaseID, query)
		if err != nil {
			return nil, fmt.Errorf("query database %s: %w", s.cfg.DatabaseID, err)
		}
		for _, pg := range resp.Results {
			records = append(records, s.toRecord(pg))
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return records, nil
}

// WriteStatus upserts the status select of one record.
func (s *Store) WriteStatus(ctx context.Context, id string, status linkcheck.Status) error {
	label, err := s.label(status)
	if err != nil {
		return err
	}
	if err := s.client.updatePageSelect(ctx, id, s.cfg.StatusProperty, label); err != nil {
		return fmt.Errorf("update status of page %s: %w", id, err)
	}
	return nil
}

// Archive soft-deletes one record.
func (s *Store) Archive(ctx context.Context, id string) error {
	if err := s.client.archivePage(ctx, id); err != nil {
		return fmt.Errorf("archive page %s: %w", id, err)
	}
	return nil
}

func (s *Store) label(status linkcheck.Status) (string, error) {
	switch status {
	case linkcheck.StatusAvailable:
		return s.cfg.Labels.Available, nil
	case linkcheck.StatusRedirect:
		return s.cfg.Labels.Redirect, nil
	case linkcheck.StatusDead:
		return s.cfg.Labels.Dead, nil
	case linkcheck.StatusError:
		return s.cfg.Labels.Error, nil
	default:
		return "", fmt.Errorf("status %q has no store label", status)
	}
}

func (s *Store) toRecord(pg page) linkcheck.LinkRecord {
	rec := linkcheck.LinkRecord{ID: pg.ID, Status: linkcheck.StatusUnchecked}

	if prop, ok := pg.Properties[s.cfg.TitleProperty]; ok {
		var b strings.Builder
		for _, rt := range prop.Title {
			b.WriteString(rt.PlainText)
		}
		rec.Title = b.String()
	}
	if prop, ok := pg.Properties[s.cfg.URLProperty]; ok && prop.URL != nil {
		rec.URL = *prop.URL
	}
	if prop, ok := pg.Properties[s.cfg.StatusProperty]; ok && prop.Select != nil {
		rec.Status = s.statusFromLabel(prop.Select.Name)
	}
	return rec
}

func (s *Store) statusFromLabel(label string) linkcheck.Status {
	switch label {
	case s.cfg.Labels.Available:
		return linkcheck.StatusAvailable
	case s.cfg.Labels.Redirect:
		return linkcheck.StatusRedirect
	case s.cfg.Labels.Dead:
		return linkcheck.StatusDead
	case s.cfg.Labels.Error:
		return linkcheck.StatusError
	default:
		return linkcheck.StatusUnchecked
	}
}
