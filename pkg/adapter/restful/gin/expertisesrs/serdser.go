// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package expertisesrs

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/momeni/expertise/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/expertise/pkg/core/model"
)

type readReq struct {
	VehicleID string `uri:"vehicleId" binding:"required,notblank"`
}

type rawAnswer struct {
	QuestionID  int64    `json:"questionId" binding:"required,min=1"`
	Value       *bool    `json:"value" binding:"required"`
	Description *string  `json:"description"`
	PhotoURLs   []string `json:"photoUrls" binding:"omitempty,dive,required,notblank"`
}

type rawCreateReq struct {
	VehicleID string      `json:"vehicleId" binding:"required,notblank"`
	Answers   []rawAnswer `json:"answers" binding:"required,min=1,dive"`
}

type createReq struct {
	VehicleID string
	Answers   []model.AnswerPayload
}

type createResp struct {
	ID uuid.UUID `json:"id"`
}

type rawIDReq struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type idReq struct {
	ID uuid.UUID
}

type rawReassignBody struct {
	VehicleID string `json:"vehicleId" binding:"required,notblank"`
	Version   *int64 `json:"version" binding:"required,min=0"`
}

type reassignReq struct {
	ID        uuid.UUID
	VehicleID string
	Version   int64
}

// Inspection is the serialized form of a model.Inspection.
type Inspection struct {
	ID        uuid.UUID `json:"id"`
	VehicleID string    `json:"vehicleId"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int64     `json:"version"`
	Answers   []Answer  `json:"answers"`
}

// Answer is the serialized form of a model.Answer.
type Answer struct {
	QuestionID  int64    `json:"questionId"`
	Value       bool     `json:"value"`
	Description *string  `json:"description"`
	PhotoURLs   []string `json:"photoUrls"`
}

// SerInspection converts in to its serialized form.
func SerInspection(in *model.Inspection) *Inspection {
	s := &Inspection{
		ID:        in.ID,
		VehicleID: in.VehicleID,
		CreatedAt: in.CreatedAt,
		Version:   in.Version,
		Answers:   make([]Answer, 0, len(in.Answers)),
	}
	for i := range in.Answers {
		a := &in.Answers[i]
		s.Answers = append(s.Answers, Answer{
			QuestionID:  a.QuestionID,
			Value:       a.Value,
			Description: a.Description,
			PhotoURLs:   a.PhotoURLs(),
		})
	}
	return s
}

func (rs *resource) DserReadReq(c *gin.Context) *readReq {
	req := &readReq{}
	if ok := serdser.BindURI(c, req); !ok {
		return nil
	}
	return req
}

// DserIdempotencyKey returns the trimmed idempotency key header.
// An empty key is returned if the header is missing or the resource
// has no idempotency store. In case of an invalid key, a response is
// written and false is returned.
func (rs *resource) DserIdempotencyKey(c *gin.Context) (string, bool) {
	if rs.idem == nil {
		return "", true
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > MaxIdempotencyKeyLen {
		var errs map[string][]string
		serdser.AddErr(
			&errs, IdempotencyKeyHeader,
			"The idempotency key is too long.",
		)
		c.JSON(http.StatusBadRequest, errs)
		return "", false
	}
	return key, true
}

func (rs *resource) DserCreateReq(c *gin.Context) *createReq {
	req := &rawCreateReq{}
	if ok := serdser.Bind(c, req, binding.JSON); !ok {
		return nil
	}
	val := &createReq{
		VehicleID: req.VehicleID,
		Answers:   make([]model.AnswerPayload, 0, len(req.Answers)),
	}
	for _, a := range req.Answers {
		val.Answers = append(val.Answers, model.AnswerPayload{
			QuestionID:  a.QuestionID,
			Value:       *a.Value,
			Description: a.Description,
			PhotoURLs:   a.PhotoURLs,
		})
	}
	return val
}

func (rs *resource) DserIDReq(c *gin.Context) *idReq {
	req := &rawIDReq{}
	if ok := serdser.BindURI(c, req); !ok {
		return nil
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		var errs map[string][]string
		serdser.AddErr(&errs, "id", "Path param id is not UUID.")
		c.JSON(http.StatusBadRequest, errs)
		return nil
	}
	return &idReq{ID: id}
}

func (rs *resource) DserReassignReq(c *gin.Context) *reassignReq {
	id := rs.DserIDReq(c)
	if id == nil {
		return nil
	}
	body := &rawReassignBody{}
	if ok := serdser.Bind(c, body, binding.JSON); !ok {
		return nil
	}
	return &reassignReq{
		ID:        id.ID,
		VehicleID: body.VehicleID,
		Version:   *body.Version,
	}
}
