package server

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ByLCY/quire/apperr"
	"github.com/ByLCY/quire/book"
	"github.com/ByLCY/quire/layout"
	"github.com/ByLCY/quire/reader"
	"github.com/ByLCY/quire/storage"
)

type handler struct {
	reader    *reader.Reader
	store     *storage.BestEffort
	summaries *storage.SummaryCache
	defaults  layout.Config
	version   string
}

// BookSummary 书库列表中的一项
type BookSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	Chapters   int    `json:"chapters"`
	Paragraphs int    `json:"paragraphs"`
}

// OpenSessionRequest 打开会话请求
type OpenSessionRequest struct {
	BookID string         `json:"bookId" binding:"required"`
	Config *layout.Config `json:"config"`
}

// SessionResponse 会话状态
type SessionResponse struct {
	BookID string             `json:"bookId"`
	Config layout.Config      `json:"config"`
	Layout *layout.BookLayout `json:"layout"`
}

// PositionRequest 保存阅读位置请求
type PositionRequest struct {
	Offset *float64 `json:"offset" binding:"required"`
}

// ResumeResponse 恢复阅读位置的结果
type ResumeResponse struct {
	Page   layout.Page `json:"page"`
	Offset float64     `json:"offset"`
}

// ChapterSummaryResponse 章节摘要
type ChapterSummaryResponse struct {
	Key     string `json:"key"`
	Summary string `json:"summary"`
}

// SummaryBody 摘要写入请求
type SummaryBody struct {
	Summary string `json:"summary" binding:"required"`
}

func (h *handler) health(c *gin.Context) {
	success(c, gin.H{
		"status":  "ok",
		"version": h.version,
		"books":   h.reader.Registry().Len(),
	})
}

func (h *handler) listBooks(c *gin.Context) {
	all := h.reader.Registry().All()
	out := make([]BookSummary, 0, len(all))
	for _, b := range all {
		out = append(out, BookSummary{
			ID:         b.ID,
			Title:      b.Title,
			Author:     b.Author,
			Chapters:   len(b.Chapters),
			Paragraphs: b.ParagraphCount(),
		})
	}
	success(c, out)
}

func (h *handler) getBook(c *gin.Context) {
	b, ok := h.reader.Registry().Get(c.Param("id"))
	if !ok {
		fail(c, apperr.ErrBookNotFound.WithDetail(c.Param("id")))
		return
	}
	success(c, b)
}

func (h *handler) openSession(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.ErrInvalidParam.WithDetail(err.Error()))
		return
	}
	cfg := h.defaults
	if req.Config != nil {
		cfg = *req.Config
	}
	s, err := h.reader.Open(c.Request.Context(), req.BookID, cfg)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, sessionResponse(s))
}

// relayout 把请求体解码到当前配置的副本上，未给出的字段保持不变。
func (h *handler) relayout(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	cfg, has := s.Config()
	if !has {
		cfg = h.defaults
	}
	if err := c.ShouldBindJSON(&cfg); err != nil {
		fail(c, apperr.ErrInvalidParam.WithDetail(err.Error()))
		return
	}
	if _, err := s.Relayout(c.Request.Context(), cfg); err != nil {
		fail(c, err)
		return
	}
	success(c, sessionResponse(s))
}

func (h *handler) getLayout(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	success(c, sessionResponse(s))
}

func (h *handler) pageByNumber(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		fail(c, apperr.ErrInvalidParam.WithDetail("page number must be an integer"))
		return
	}
	page, found := s.PageByNumber(n)
	if !found {
		fail(c, apperr.ErrPageNotFound.WithDetail(c.Param("number")))
		return
	}
	success(c, page)
}

func (h *handler) pageAtOffset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	offset, ok := parseOffset(c, c.Query("offset"))
	if !ok {
		return
	}
	page, found := s.PageAtOffset(offset)
	if !found {
		fail(c, apperr.ErrPageNotFound)
		return
	}
	success(c, page)
}

func (h *handler) savePosition(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.ErrInvalidParam.WithDetail(err.Error()))
		return
	}
	page, found := s.SavePosition(c.Request.Context(), *req.Offset)
	if !found {
		fail(c, apperr.ErrPageNotFound)
		return
	}
	success(c, page)
}

func (h *handler) resume(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	page, offset, found := s.Resume(c.Request.Context())
	if !found {
		fail(c, apperr.ErrStateAbsent)
		return
	}
	success(c, ResumeResponse{Page: page, Offset: offset})
}

// chapterSummary 返回章节摘要；缓存缺失时由正文摘录生成并写回。
func (h *handler) chapterSummary(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	b := s.Book()
	chapterID := c.Query("chapter")
	if chapterID == "" {
		if page, found := s.PageAtOffset(0); found {
			chapterID = page.ChapterID
		}
	}
	ch, found := b.Chapter(chapterID)
	if !found {
		fail(c, apperr.New(apperr.CodeNotFound, "chapter not found").WithDetail(chapterID))
		return
	}

	key := storage.SummaryKey(b.ID, ch.ID)
	summary, err := h.summaries.GetOrLoad(c.Request.Context(), key, func(context.Context) (string, error) {
		return book.Excerpt(ch, book.DefaultExcerptRunes), nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	success(c, ChapterSummaryResponse{Key: key, Summary: summary})
}

func (h *handler) getReadingState(c *gin.Context) {
	st := h.store.GetReadingState(c.Request.Context(), c.Param("id"))
	if st == nil {
		fail(c, apperr.ErrStateAbsent)
		return
	}
	success(c, st)
}

func (h *handler) putReadingState(c *gin.Context) {
	var st storage.ReadingState
	if err := c.ShouldBindJSON(&st); err != nil {
		fail(c, apperr.ErrInvalidParam.WithDetail(err.Error()))
		return
	}
	st.BookID = c.Param("id")
	h.store.SaveReadingState(c.Request.Context(), st)
	success(c, st)
}

func (h *handler) listHighlights(c *gin.Context) {
	success(c, h.store.GetHighlights(c.Request.Context(), c.Param("id")))
}

func (h *handler) addHighlight(c *gin.Context) {
	var hl storage.Highlight
	if err := c.ShouldBindJSON(&hl); err != nil {
		fail(c, apperr.ErrInvalidParam.WithDetail(err.Error()))
		return
	}
	if hl.Text == "" {
		fail(c, apperr.ErrInvalidParam.WithDetail("text is required"))
		return
	}
	saved, ok := h.store.AddHighlight(c.Request.Context(), c.Param("id"), hl)
	if !ok {
		fail(c, apperr.New(apperr.CodeStorageError, "highlight not saved"))
		return
	}
	created(c, saved)
}

func (h *handler) deleteHighlight(c *gin.Context) {
	if !h.store.DeleteHighlight(c.Request.Context(), c.Param("id"), c.Param("hid")) {
		fail(c, apperr.New(apperr.CodeNotFound, "highlight not found").WithDetail(c.Param("hid")))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) getSummary(c *gin.Context) {
	summary := h.store.GetSummary(c.Request.Context(), c.Param("key"))
	if summary == "" {
		fail(c, apperr.ErrSummaryAbsent.WithDetail(c.Param("key")))
		return
	}
	success(c, ChapterSummaryResponse{Key: c.Param("key"), Summary: summary})
}

func (h *handler) putSummary(c *gin.Context) {
	var body SummaryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, apperr.ErrInvalidParam.WithDetail(err.Error()))
		return
	}
	h.store.SaveSummary(c.Request.Context(), c.Param("key"), body.Summary)
	success(c, ChapterSummaryResponse{Key: c.Param("key"), Summary: body.Summary})
}

func (h *handler) session(c *gin.Context) (*reader.Session, bool) {
	s, err := h.reader.Session()
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return s, true
}

func parseOffset(c *gin.Context, raw string) (float64, bool) {
	if raw == "" {
		fail(c, apperr.ErrInvalidParam.WithDetail("offset is required"))
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) {
		fail(c, apperr.ErrInvalidParam.WithDetail("offset must be a number"))
		return 0, false
	}
	return v, true
}

func sessionResponse(s *reader.Session) SessionResponse {
	cfg, _ := s.Config()
	return SessionResponse{BookID: s.Book().ID, Config: cfg, Layout: s.Layout()}
}
