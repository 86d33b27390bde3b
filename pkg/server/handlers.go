package server

import (
	"errors"
	"net/http"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/variant"
	"github.com/gin-gonic/gin"
)

// variantSummary is one row of the variant listing.
type variantSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Objects     int    `json:"objects"`
	Stages      int    `json:"stages"`
	Source      string `json:"source"`
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listVariants(c *gin.Context) {
	pattern := c.DefaultQuery("match", "*")
	matched, err := s.registry.Match(pattern)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out := make([]variantSummary, 0, len(matched))
	for _, v := range matched {
		out = append(out, variantSummary{
			Name:        v.Name,
			Description: v.Description,
			Objects:     len(v.Objects),
			Stages:      v.StageCount(),
			Source:      s.registry.Source(v.Name),
		})
	}
	c.JSON(http.StatusOK, gin.H{"variants": out})
}

func (s *Server) getVariant(c *gin.Context) {
	v, err := s.registry.Get(c.Param("name"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, struct {
		*experiment.Variant
		Warnings []string `json:"warnings,omitempty"`
	}{v, v.Lint()})
}

func statusFor(err error) int {
	if errors.Is(err, variant.ErrUnknownVariant) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
