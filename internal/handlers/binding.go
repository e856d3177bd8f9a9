package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
)

var errEmptyBody = errors.New("request body is empty")

// BindNestedOrFlat decodes the JSON body into obj. A body wrapped under key
// ({"operation": {...}}) is unwrapped first; otherwise the whole body is used.
// The body is restored so later reads still see it.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	if c.Request.Body == nil {
		return errEmptyBody
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	var wrapped map[string]json.RawMessage
	if json.Unmarshal(body, &wrapped) == nil {
		if inner, ok := wrapped[key]; ok {
			return json.Unmarshal(inner, obj)
		}
	}
	return json.Unmarshal(body, obj)
}
