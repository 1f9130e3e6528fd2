package app

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"dataview/domain/core"
	"dataview/domain/explorer"
	"dataview/domain/export"
	"dataview/domain/filter"
	"dataview/domain/format"
	"dataview/domain/table"
	"dataview/domain/view"
	"dataview/internal/profiling"
	"dataview/ports"
)

// SessionConfig tunes a view session.
type SessionConfig struct {
	// MailboxSize bounds the number of queued requests.
	MailboxSize int
	// Format is used when a request carries no format options.
	Format format.Options
}

// DefaultSessionConfig returns the built-in session settings.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{MailboxSize: 16, Format: format.DefaultOptions()}
}

// Session owns the view over one source. Requests and change-detection ticks
// run one at a time on the session goroutine; the fields below the mailbox are
// only touched there.
type Session struct {
	id        core.SessionID
	source    ports.Source
	publisher ports.EventPublisher
	logger    *zap.Logger
	cfg       SessionConfig

	mailbox   chan func()
	done      chan struct{}
	closeOnce sync.Once
	onClose   func(core.SessionID)
	state     atomic.Int32

	schema table.Schema
	cache  *view.Cache
}

// NewSession snapshots source and starts the session goroutine.
func NewSession(ctx context.Context, id core.SessionID, source ports.Source, publisher ports.EventPublisher, cfg SessionConfig, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = DefaultSessionConfig().MailboxSize
	}

	frame, err := source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot source %s: %w", source.Name(), err)
	}

	s := &Session{
		id:        id,
		source:    source,
		publisher: publisher,
		logger:    logger.With(zap.String("session_id", id.String()), zap.String("source", source.Name())),
		cfg:       cfg,
		mailbox:   make(chan func(), cfg.MailboxSize),
		done:      make(chan struct{}),
		schema:    table.Inspect(frame),
		cache:     view.NewCache(frame),
	}
	s.state.Store(int32(StateFresh))

	go s.run()
	s.logger.Info("session opened", zap.Int("rows", frame.NumRows()), zap.Int("columns", frame.NumColumns()))
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() core.SessionID { return s.id }

// SourceName returns the name of the observed source.
func (s *Session) SourceName() string { return s.source.Name() }

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) run() {
	for {
		select {
		case fn := <-s.mailbox:
			fn()
		case <-s.done:
			return
		}
	}
}

// do runs fn on the session goroutine and waits for it to finish. Once fn has
// started it always runs to completion; a caller that gives up first claims
// the task so it is skipped instead.
func (s *Session) do(ctx context.Context, fn func()) error {
	var claimed atomic.Bool
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		if claimed.CompareAndSwap(false, true) {
			fn()
		}
	}

	select {
	case <-s.done:
		return core.ErrSessionClosed
	default:
	}

	select {
	case s.mailbox <- task:
	case <-s.done:
		return core.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	abandon := func(err error) error {
		if claimed.CompareAndSwap(false, true) {
			return err
		}
		<-finished
		return nil
	}

	select {
	case <-finished:
		return nil
	case <-s.done:
		return abandon(core.ErrSessionClosed)
	case <-ctx.Done():
		return abandon(ctx.Err())
	}
}

// Close tears the session down without emitting an event.
func (s *Session) Close() {
	s.shutdown()
}

func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.done)
		if s.onClose != nil {
			s.onClose(s.id)
		}
		s.logger.Info("session closed")
	})
}

func (s *Session) publish(kind explorer.EventKind) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(explorer.Event{SessionID: s.id, Kind: kind, Timestamp: core.Now()})
}

func (s *Session) options(requested *format.Options) (format.Options, error) {
	if requested == nil {
		return s.cfg.Format, nil
	}
	if err := requested.Validate(); err != nil {
		return format.Options{}, core.NewInvalidRequestError(err.Error())
	}
	return *requested, nil
}

// GetSchema returns the schema entries at the requested indices, or the
// whole schema when none are given.
func (s *Session) GetSchema(ctx context.Context, params explorer.GetSchemaParams) (explorer.SchemaReply, error) {
	var reply explorer.SchemaReply
	err := s.do(ctx, func() {
		if len(params.ColumnIndices) == 0 {
			reply.Columns = append(table.Schema{}, s.schema...)
			return
		}
		reply.Columns = s.schema.Select(params.ColumnIndices)
	})
	return reply, err
}

// SearchSchema finds columns whose names contain the search term.
func (s *Session) SearchSchema(ctx context.Context, params explorer.SearchSchemaParams) (explorer.SearchSchemaReply, error) {
	var reply explorer.SearchSchemaReply
	err := s.do(ctx, func() {
		matches := s.schema.Search(params.SearchTerm)
		reply.TotalNumMatches = len(matches)
		if params.MaxResults > 0 && len(matches) > params.MaxResults {
			matches = matches[:params.MaxResults]
		}
		reply.Matches = matches
	})
	return reply, err
}

// GetState reports filters, sort keys and both table shapes.
func (s *Session) GetState(ctx context.Context) (explorer.BackendState, error) {
	var state explorer.BackendState
	err := s.do(ctx, func() {
		frame := s.cache.Frame()
		state = explorer.BackendState{
			DisplayName:          s.source.Name(),
			TableShape:           s.cache.Shape(),
			TableUnfilteredShape: frame.Shape(),
			HasRowLabels:         frame.HasRowLabels(),
			RowFilters:           s.cache.Filters(),
			SortKeys:             s.cache.SortKeys(),
			SupportedFeatures: explorer.SupportedFeatures{
				RowFilters:    filter.SupportedKinds(),
				ColumnProfile: profiling.SupportedKinds(),
				ExportFormats: export.SupportedFormats(),
				SortColumns:   true,
				SearchSchema:  true,
			},
		}
	})
	return state, err
}

// SetRowFilters replaces the filter list and reports the selected row count.
func (s *Session) SetRowFilters(ctx context.Context, params explorer.SetRowFiltersParams) (explorer.FilterResult, error) {
	var result explorer.FilterResult
	err := s.do(ctx, func() {
		filters := make([]filter.RowFilter, len(params.Filters))
		for i, f := range params.Filters {
			if f.ID == "" {
				f.ID = core.NewFilterID().String()
			}
			if f.Condition == "" {
				f.Condition = filter.ConditionAnd
			}
			filters[i] = f
		}
		s.cache.SetFilters(filters)
		v := s.cache.Get()
		result = explorer.FilterResult{SelectedNumRows: v.NumRows(), HadErrors: v.HadErrors}
		s.logger.Debug("row filters set", zap.Int("filters", len(filters)), zap.Int("selected", v.NumRows()))
	})
	return result, err
}

// SetSortColumns replaces the sort keys.
func (s *Session) SetSortColumns(ctx context.Context, params explorer.SetSortColumnsParams) error {
	return s.do(ctx, func() {
		s.cache.SetSortKeys(params.SortKeys)
	})
}

// GetDataValues formats the selected view rows of each requested column.
// Unknown columns and rows outside the view are left out.
func (s *Session) GetDataValues(ctx context.Context, params explorer.GetDataValuesParams) (explorer.TableData, error) {
	opts, err := s.options(params.FormatOptions)
	if err != nil {
		return explorer.TableData{}, err
	}

	data := explorer.TableData{Columns: [][]format.Cell{}}
	err = s.do(ctx, func() {
		frame, v := s.cache.Frame(), s.cache.Get()
		for _, sel := range params.Columns {
			col, ok := frame.Column(sel.ColumnIndex)
			if !ok {
				continue
			}
			rows := v.SourceRows(sel.Spec.Positions(v.NumRows()))
			data.Columns = append(data.Columns, format.Column(col, rows, opts))
		}
	})
	return data, err
}

// GetRowLabels returns host row labels, or 1-based source row numbers when
// the host has none.
func (s *Session) GetRowLabels(ctx context.Context, params explorer.GetRowLabelsParams) (explorer.TableRowLabels, error) {
	opts, err := s.options(params.FormatOptions)
	if err != nil {
		return explorer.TableRowLabels{}, err
	}

	var reply explorer.TableRowLabels
	err = s.do(ctx, func() {
		frame, v := s.cache.Frame(), s.cache.Get()
		rows := v.SourceRows(params.Selection.Positions(v.NumRows()))
		labels := make([]string, len(rows))
		for i, r := range rows {
			if frame.HasRowLabels() && r < len(frame.RowLabels) {
				labels[i] = format.Truncate(frame.RowLabels[r], opts.MaxValueLength)
				continue
			}
			labels[i] = strconv.Itoa(r + 1)
		}
		reply.RowLabels = [][]string{labels}
	})
	return reply, err
}

// GetColumnProfiles profiles columns over the current view.
func (s *Session) GetColumnProfiles(ctx context.Context, params explorer.GetColumnProfilesParams) (explorer.ColumnProfilesReply, error) {
	opts, err := s.options(params.FormatOptions)
	if err != nil {
		return explorer.ColumnProfilesReply{}, err
	}

	reply := explorer.ColumnProfilesReply{CallbackID: params.CallbackID}
	err = s.do(ctx, func() {
		profiler := profiling.NewProfiler(opts)
		reply.Profiles = profiler.ProfileAll(s.cache.Frame(), s.cache.Get().Rows, params.Profiles)
		for i, res := range reply.Profiles {
			for kind, msg := range res.Errors {
				s.logger.Debug("profile failed",
					zap.Int("column_index", params.Profiles[i].ColumnIndex),
					zap.String("kind", string(kind)),
					zap.String("error", msg))
			}
		}
	})
	return reply, err
}

// ExportDataSelection serializes a selection of the current view.
func (s *Session) ExportDataSelection(ctx context.Context, params explorer.ExportDataSelectionParams) (export.Result, error) {
	var (
		result    export.Result
		exportErr error
	)
	err := s.do(ctx, func() {
		exporter := export.NewExporter(s.cfg.Format)
		result, exportErr = exporter.Export(s.cache.Frame(), s.cache.Get().Rows, params.Selection, params.Format)
	})
	if err != nil {
		return export.Result{}, err
	}
	return result, exportErr
}
