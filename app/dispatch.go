package app

import (
	"context"
	"encoding/json"
	"fmt"

	"dataview/domain/core"
	"dataview/domain/explorer"
	apperrors "dataview/internal/errors"
)

// Dispatch decodes an RPC, runs it against the session and wraps the outcome
// in a response carrying the request id.
func (s *Session) Dispatch(ctx context.Context, req explorer.Request) explorer.Response {
	result, err := s.dispatch(ctx, req)
	if err != nil {
		appErr := apperrors.FromDomain(err)
		return explorer.Response{
			ID:    req.ID,
			Error: &explorer.ErrorReply{Code: appErr.Code, Message: appErr.Error()},
		}
	}
	return explorer.Response{ID: req.ID, Result: result}
}

func (s *Session) dispatch(ctx context.Context, req explorer.Request) (any, error) {
	switch req.Method {
	case explorer.MethodGetSchema:
		var p explorer.GetSchemaParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return s.GetSchema(ctx, p)
	case explorer.MethodSearchSchema:
		var p explorer.SearchSchemaParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return s.SearchSchema(ctx, p)
	case explorer.MethodGetState:
		return s.GetState(ctx)
	case explorer.MethodSetRowFilters:
		var p explorer.SetRowFiltersParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return s.SetRowFilters(ctx, p)
	case explorer.MethodSetSortColumns:
		var p explorer.SetSortColumnsParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return struct{}{}, s.SetSortColumns(ctx, p)
	case explorer.MethodGetDataValues:
		var p explorer.GetDataValuesParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return s.GetDataValues(ctx, p)
	case explorer.MethodGetRowLabels:
		var p explorer.GetRowLabelsParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return s.GetRowLabels(ctx, p)
	case explorer.MethodGetColumnProfiles:
		var p explorer.GetColumnProfilesParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return s.GetColumnProfiles(ctx, p)
	case explorer.MethodExportDataSelection:
		var p explorer.ExportDataSelectionParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		return s.ExportDataSelection(ctx, p)
	}
	return nil, fmt.Errorf("%w: %s", core.ErrUnknownMethod, req.Method)
}

func decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return core.NewInvalidRequestError(fmt.Sprintf("malformed params: %v", err))
	}
	return nil
}
