package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unirank/rankbrowser/internal/repository"
	"github.com/unirank/rankbrowser/internal/response"
)

// User-facing message prefixes; the failure detail follows.
const (
	msgLoadFailed    = "加载大学列表失败："
	msgSearchFailed  = "搜索过程中发生错误："
	msgSubjectFailed = "加载学科排名失败："
	msgCatalogFailed = "加载学科列表失败："
)

// describe turns an upstream failure into a short user-facing detail.
func describe(err error) string {
	var se *repository.StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return fmt.Sprintf("HTTP error! status: %d", se.StatusCode)
	}
	return err.Error()
}

func failUpstream(c *gin.Context, err error) {
	_ = c.Error(err)
	response.FailWithFields(c, http.StatusBadGateway, response.ErrUpstreamUnavailable, map[string]string{
		"detail": describe(err),
	})
}
