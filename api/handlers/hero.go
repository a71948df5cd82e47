package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/models"
	"heroes/heroes_go_service/pkg/helper"
	span "heroes/heroes_go_service/pkg/jaeger"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/pkg/uifilter"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) GetHero(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_hero.GetHero", id)
	defer dbSpan.Finish()

	hero, err := h.strg.Hero().GetByID(ctx, id)
	if err != nil {
		h.handleError(c, "GetHero", err)
		return
	}

	c.JSON(http.StatusOK, hero)
}

func (h *Handler) GetTopHeroes(c *gin.Context) {
	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_hero.GetTopHeroes", h.cfg.TopHeroesCount)
	defer dbSpan.Finish()

	heroes, err := h.strg.Hero().FindTop(ctx, h.cfg.TopHeroesCount)
	if err != nil {
		h.handleError(c, "GetTopHeroes", err)
		return
	}

	c.JSON(http.StatusOK, heroes)
}

func (h *Handler) SearchHeroes(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusOK, []models.Hero{})
		return
	}

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_hero.SearchHeroes", name)
	defer dbSpan.Finish()

	heroes, err := h.strg.Hero().Search(ctx, name)
	if err != nil {
		h.handleError(c, "SearchHeroes", err)
		return
	}

	c.JSON(http.StatusOK, heroes)
}

// FilterHeroes returns one page of heroes matching the request plus the total match count.
func (h *Handler) FilterHeroes(c *gin.Context) {
	var req uifilter.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid filter request: "+err.Error())
		return
	}

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_hero.FilterHeroes", req)
	defer dbSpan.Finish()

	h.log.Info("---FilterHeroes--->>>", logger.Any("req", req))

	heroes, err := h.strg.Hero().FindByFilter(ctx, req)
	if err != nil {
		h.handleError(c, "FilterHeroes", err)
		return
	}

	total, err := h.strg.Hero().CountByFilter(ctx, req)
	if err != nil {
		h.handleError(c, "FilterHeroes", err)
		return
	}

	c.JSON(http.StatusOK, models.HeroFilterResult{
		Records:      heroes,
		TotalRecords: total,
	})
}

// ExportHeroes writes every hero matching the filters, ignoring pagination, as xlsx or csv.
func (h *Handler) ExportHeroes(c *gin.Context) {
	format := c.DefaultQuery("format", config.ExportFormatXLSX)
	if format != config.ExportFormatXLSX && format != config.ExportFormatCSV {
		h.badRequest(c, "format must be xlsx or csv")
		return
	}

	var req uifilter.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid filter request: "+err.Error())
		return
	}
	req.First, req.Rows = nil, nil

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_hero.ExportHeroes", req)
	defer dbSpan.Finish()

	h.log.Info("---ExportHeroes--->>>", logger.String("format", format), logger.Any("req", req))

	heroes, err := h.strg.Hero().FindByFilter(ctx, req)
	if err != nil {
		h.handleError(c, "ExportHeroes", err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case config.ExportFormatCSV:
		contentType = "text/csv"
		err = helper.WriteHeroesCSV(&buf, heroes)
	default:
		contentType = xlsxContentType
		err = helper.WriteHeroesXLSX(&buf, heroes)
	}
	if err != nil {
		h.handleError(c, "ExportHeroes", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="heroes.`+format+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// SaveHero creates the hero when it has no id and updates it otherwise.
func (h *Handler) SaveHero(c *gin.Context) {
	var req models.Hero
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid hero: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.badRequest(c, "hero name is required")
		return
	}

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_hero.SaveHero", req)
	defer dbSpan.Finish()

	h.log.Info("---SaveHero--->>>", logger.Any("req", req))

	var (
		hero *models.Hero
		err  error
	)
	if req.ID == 0 {
		hero, err = h.strg.Hero().Create(ctx, &req)
	} else {
		hero, err = h.strg.Hero().Update(ctx, &req)
	}
	if err != nil {
		h.handleError(c, "SaveHero", err)
		return
	}

	c.JSON(http.StatusOK, hero)
}

func (h *Handler) DeleteHero(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	dbSpan, ctx := span.StartSpanFromContext(c.Request.Context(), "api_hero.DeleteHero", id)
	defer dbSpan.Finish()

	h.log.Info("---DeleteHero--->>>", logger.Int64("id", id))

	hero, err := h.strg.Hero().Delete(ctx, id)
	if err != nil {
		h.handleError(c, "DeleteHero", err)
		return
	}

	c.JSON(http.StatusOK, hero)
}
