// Package handler exposes the SBS query service over HTTP.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/sbs-api/biz"
	"github.com/kart-io/sbs-x/pkg/errors"
	"github.com/kart-io/sbs-x/pkg/response"
	"github.com/kart-io/sbs-x/pkg/validator"
)

// SBSHandler serves volumes, annotations and searches.
type SBSHandler struct {
	volumes *biz.VolumeService
	search  *biz.SearchService
}

// NewSBSHandler creates a new SBSHandler.
func NewSBSHandler(volumes *biz.VolumeService, search *biz.SearchService) *SBSHandler {
	return &SBSHandler{volumes: volumes, search: search}
}

type volumeRequest struct {
	Volume int `uri:"volume" binding:"required,gt=0"`
}

type searchRequest struct {
	Term string `json:"term" binding:"searchterm"`
}

// ListVolumes handles GET /volumes.
//
//	@Summary	List volumes
//	@Tags		volumes
//	@Produce	json
//	@Success	200	{array}		model.VolumeSummary
//	@Failure	500	{object}	response.ErrorBody
//	@Router		/volumes [get]
func (h *SBSHandler) ListVolumes(c *gin.Context) {
	list, err := h.volumes.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, list)
}

// GetVolume handles GET /volumes/:volume.
//
//	@Summary	Get a volume
//	@Tags		volumes
//	@Produce	json
//	@Param		volume	path		int	true	"Volume number"	minimum(1)
//	@Success	200		{object}	model.Volume
//	@Failure	400		{object}	response.ErrorBody
//	@Failure	404		{object}	response.ErrorBody
//	@Router		/volumes/{volume} [get]
func (h *SBSHandler) GetVolume(c *gin.Context) {
	var req volumeRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.Fail(c, bindError(c, biz.ErrInvalidVolume, err))
		return
	}

	v, err := h.volumes.Get(c.Request.Context(), req.Volume)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, v)
}

// GetVolumeTags handles GET /volumes/:volume/tags.
//
//	@Summary	Get the tag annotations of a volume
//	@Tags		volumes
//	@Produce	json
//	@Param		volume	path		int	true	"Volume number"	minimum(1)
//	@Success	200		{object}	model.VolumeTags
//	@Failure	400		{object}	response.ErrorBody
//	@Failure	404		{object}	response.ErrorBody
//	@Router		/volumes/{volume}/tags [get]
func (h *SBSHandler) GetVolumeTags(c *gin.Context) {
	var req volumeRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.Fail(c, bindError(c, biz.ErrInvalidVolume, err))
		return
	}

	t, err := h.volumes.GetTags(c.Request.Context(), req.Volume)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, t)
}

// ListTags handles GET /tags.
//
//	@Summary	List distinct tags
//	@Tags		annotations
//	@Produce	json
//	@Success	200	{array}	string
//	@Router		/tags [get]
func (h *SBSHandler) ListTags(c *gin.Context) {
	tags, err := h.volumes.Tags(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, tags)
}

// ListCharacters handles GET /characters.
//
//	@Summary	List distinct characters
//	@Tags		annotations
//	@Produce	json
//	@Success	200	{array}	string
//	@Router		/characters [get]
func (h *SBSHandler) ListCharacters(c *gin.Context) {
	chars, err := h.volumes.Characters(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, chars)
}

// Search returns a handler running a typ search on the path parameter param.
//
//	@Summary	Search sections
//	@Tags		search
//	@Produce	json
//	@Param		term	path		string	true	"Literal, case-insensitive search term"
//	@Success	200		{array}		model.MatchResult
//	@Failure	400		{object}	response.ErrorBody
//	@Router		/search/text/{term} [get]
//	@Router		/search/character/{term} [get]
//	@Router		/search/tag/{term} [get]
func (h *SBSHandler) Search(typ model.SearchType, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := searchRequest{Term: c.Param(param)}
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			response.Fail(c, termError(c, req.Term, err))
			return
		}

		results, err := h.search.Search(c.Request.Context(), req.Term, typ)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.OK(c, results)
	}
}

// termError picks the errno describing why term was rejected.
func termError(c *gin.Context, term string, cause error) error {
	if _, err := biz.NormalizeTerm(term); err != nil {
		return err
	}
	return bindError(c, errors.ErrValidationFailed, cause)
}

// bindError answers with the translated rule failures when cause came from
// the validator, and with e's own message otherwise.
func bindError(c *gin.Context, e *errors.Errno, cause error) error {
	if fe, ok := validator.Global().Translate(cause, response.Lang(c)); ok {
		e = e.WithMessage(fe.Error())
	}
	return e.WithCause(cause)
}
