package biz

import (
	"github.com/kart-io/sbs-x/pkg/errors"
)

func init() {
	errors.RegisterService(errors.ServiceSBS, "sbs")
}

// Request errors.
var (
	ErrEmptyTerm = errors.NewRequestError(errors.ServiceSBS, 1).
		Message("Search term must not be empty", "搜索词不能为空").
		MustBuild()

	ErrTermTooLong = errors.NewRequestError(errors.ServiceSBS, 2).
		Message("Search term is too long", "搜索词过长").
		MustBuild()

	ErrInvalidVolume = errors.NewRequestError(errors.ServiceSBS, 3).
		Message("Volume must be a positive integer", "卷号必须为正整数").
		MustBuild()

	ErrInvalidSearchType = errors.NewRequestError(errors.ServiceSBS, 4).
		Message("Unknown search type", "未知的搜索类型").
		MustBuild()
)

// Resource errors.
var (
	ErrVolumeNotFound = errors.NewNotFoundError(errors.ServiceSBS, 1).
		Message("Volume not found", "卷不存在").
		MustBuild()

	ErrVolumeTagsNotFound = errors.NewNotFoundError(errors.ServiceSBS, 2).
		Message("Volume tags not found", "卷标签不存在").
		MustBuild()
)

// ErrStoreUnavailable hides document store failures behind a generic message.
var ErrStoreUnavailable = errors.NewDatabaseError(errors.ServiceSBS, 1).
	Message("Failed to query the document store", "查询数据存储失败").
	MustBuild()
