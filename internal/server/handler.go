package server

import (
	"context"
	"net/http"

	"cvmatch/internal/engine"
	"cvmatch/internal/observability"
	"cvmatch/internal/types"
)

// createMatchHandler returns the handler for single candidate/job matching
func (s *Server) createMatchHandler(om *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MatchRequest
		if !s.parseJSONRequest(w, r, &req) {
			return
		}

		var result *types.MatchResult
		err := s.trackOperation(om, r.Context(), "match", func(ctx context.Context) error {
			var matchErr error
			result, matchErr = s.Engine.Match(ctx, req.Candidate, req.Job)
			return matchErr
		})
		if err != nil {
			s.Logger.LogError(err, "Match request failed",
				"candidate", req.Candidate.FullName,
				"job", req.Job.Title)
			s.writeErrorResponse(w, http.StatusInternalServerError, "match_failed", err.Error())
			return
		}

		if om != nil {
			if metrics := om.GetMetrics(); metrics != nil {
				degraded := int64(0)
				if result.Degraded {
					degraded = 1
				}
				metrics.RecordCandidatesScored(r.Context(), 1, degraded)
			}
		}

		s.writeJSONResponse(w, http.StatusOK, result)
	}
}

// createBatchMatchHandler returns the handler for batch matching
func (s *Server) createBatchMatchHandler(om *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BatchMatchRequest
		if !s.parseJSONRequest(w, r, &req) {
			return
		}

		if len(req.Candidates) == 0 {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "candidates list must not be empty")
			return
		}

		topK := req.TopK
		if topK <= 0 {
			topK = s.AppConfig.Matching.TopK
		}

		var batch *types.BatchMatchResult
		_ = s.trackOperation(om, r.Context(), "batch_match", func(ctx context.Context) error {
			batch = s.Engine.BatchMatch(ctx, req.Candidates, req.Job, topK)
			return nil
		})

		if om != nil {
			if metrics := om.GetMetrics(); metrics != nil {
				degraded := int64(0)
				for _, match := range batch.Matches {
					if match.Degraded {
						degraded++
					}
				}
				metrics.RecordCandidatesScored(r.Context(), int64(len(req.Candidates)), degraded)
				metrics.RecordBatchProcessed(r.Context(), len(batch.Errors) == 0)
			}
		}

		s.writeJSONResponse(w, http.StatusOK, batch)
	}
}

// createSummaryHandler returns the handler for candidate summaries
func (s *Server) createSummaryHandler(om *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MatchRequest
		if !s.parseJSONRequest(w, r, &req) {
			return
		}

		var summary *types.CandidateSummary
		_ = s.trackOperation(om, r.Context(), "summary", func(ctx context.Context) error {
			summary = s.Engine.Summarize(req.Candidate, req.Job)
			return nil
		})

		s.writeJSONResponse(w, http.StatusOK, summary)
	}
}

// createEmbedHandler returns the handler for standalone text embedding
func (s *Server) createEmbedHandler(om *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EmbedRequest
		if !s.parseJSONRequest(w, r, &req) {
			return
		}

		if req.Text == "" {
			s.writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "text must not be empty")
			return
		}

		var result types.EmbedResult
		_ = s.trackOperation(om, r.Context(), "embed", func(ctx context.Context) error {
			vector, placeholder := s.Engine.EmbedText(ctx, req.Text)
			result = types.EmbedResult{
				Embedding:   vector,
				Dimension:   len(vector),
				Placeholder: placeholder,
			}
			return nil
		})

		s.writeJSONResponse(w, http.StatusOK, result)
	}
}

// createSimilarityHandler returns the handler for vector similarity
func (s *Server) createSimilarityHandler(om *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SimilarityRequest
		if !s.parseJSONRequest(w, r, &req) {
			return
		}

		similarity := engine.Similarity(req.A, req.B)
		fallback := len(req.A) == 0 || len(req.B) == 0 || len(req.A) != len(req.B)

		s.writeJSONResponse(w, http.StatusOK, SimilarityResponse{
			Similarity: similarity,
			Fallback:   fallback,
		})
	}
}

// trackOperation routes the operation through the metrics tracker when
// observability is enabled and runs it directly otherwise.
func (s *Server) trackOperation(om *observability.Manager, ctx context.Context, operation string, fn func(context.Context) error) error {
	if om != nil {
		if metrics := om.GetMetrics(); metrics != nil {
			return metrics.TrackMatchOperation(ctx, operation, fn)
		}
	}
	return fn(ctx)
}
