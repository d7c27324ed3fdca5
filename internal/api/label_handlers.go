package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cookbookapp/cookbook-server/internal/domain"
)

func (s *Server) registerLabelRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/tags",
		Summary:     "List own tags",
		Description: "Lists the caller's tags, alphabetically.",
		Tags:        []string{"Labels"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "listIngredients",
		Method:      http.MethodGet,
		Path:        "/ingredients",
		Summary:     "List own ingredients",
		Description: "Lists the caller's ingredients, alphabetically.",
		Tags:        []string{"Labels"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListIngredients)
}

// LabelResponse contains a tag or ingredient in API responses.
type LabelResponse struct {
	ID   int64  `json:"id" doc:"Label ID"`
	Name string `json:"name" doc:"Label name"`
}

// LabelListOutput wraps a label list for Huma.
type LabelListOutput struct {
	Body []LabelResponse
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*LabelListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Label.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &LabelListOutput{Body: mapLabels(tags)}, nil
}

func (s *Server) handleListIngredients(ctx context.Context, _ *struct{}) (*LabelListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ingredients, err := s.services.Label.ListIngredients(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &LabelListOutput{Body: mapLabels(ingredients)}, nil
}

func mapLabels(labels []*domain.Label) []LabelResponse {
	out := make([]LabelResponse, 0, len(labels))
	for _, l := range labels {
		out = append(out, LabelResponse{ID: l.ID, Name: l.Name})
	}
	return out
}
