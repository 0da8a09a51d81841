package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"xide/service/fs"
)

type pathRequest struct {
	Path string `json:"path"`
}

type writeRequest struct {
	Path    string  `json:"path"`
	Content *string `json:"content"`
}

type renameRequest struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

type moveRequest struct {
	SourcePath string `json:"sourcePath"`
	TargetPath string `json:"targetPath"`
}

type commandRequest struct {
	Command string `json:"command"`
	Cwd     string `json:"cwd"`
}

// bindJSON decodes the request body into v. An empty body leaves v zeroed so
// the missing fields are reported by name.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// required reports a 400 for the first empty field, given as name/value pairs.
func required(c *gin.Context, fields ...string) bool {
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			fail(c, http.StatusBadRequest, fields[i]+" required")
			return false
		}
	}
	return true
}

func queryPath(c *gin.Context) (string, bool) {
	path := c.Query("path")
	return path, required(c, "path", path)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

func succeed(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// respond writes the envelope for r. Failures the caller can act on, such as
// a missing file or a guarded root, are reported with 200; anything
// unexpected is a 500.
func respond[T any](c *gin.Context, r fs.Result[T], payload func(T) gin.H) {
	if !r.OK() {
		status := http.StatusOK
		switch r.Err.Kind {
		case fs.KindValidation:
			status = http.StatusBadRequest
		case fs.KindInternal:
			status = http.StatusInternalServerError
		}
		fail(c, status, r.Err.Error())
		return
	}
	if payload == nil {
		succeed(c, nil)
		return
	}
	succeed(c, payload(r.Value))
}
