package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innovation-hub-api/internal/middleware"
	"github.com/noah-isme/innovation-hub-api/internal/models"
)

func actorFromContext(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(middleware.ContextActorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}

func listOptionsFromQuery(c *gin.Context) models.ListOptions {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	opts := models.ListOptions{
		Page:      page,
		PageSize:  pageSize,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	opts.Normalize()
	return opts
}

func paginationFor(opts models.ListOptions, total int) *models.Pagination {
	return &models.Pagination{Page: opts.Page, PageSize: opts.PageSize, TotalCount: total}
}
