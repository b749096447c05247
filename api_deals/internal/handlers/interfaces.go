package handlers

import (
	"context"

	"gfdeals/api_deals/internal/deals"
	"gfdeals/api_deals/internal/pipeline"
)

type PipelineRunner interface {
	Run(ctx context.Context) (pipeline.Report, error)
}

type DealStore interface {
	Load(ctx context.Context) ([]deals.Deal, error)
}
