package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"xide/service/command"
)

type CommandController struct {
	runner *command.Runner
}

func NewCommandController(runner *command.Runner) *CommandController {
	return &CommandController{runner: runner}
}

// Execute runs a shell command and returns what it wrote. A command that
// fails still reports its output.
func (cc *CommandController) Execute(c *gin.Context) {
	var req commandRequest
	if !bindJSON(c, &req) || !required(c, "command", req.Command) {
		return
	}

	out := cc.runner.Execute(c.Request.Context(), req.Command, req.Cwd)
	switch {
	case errors.Is(out.Err, command.ErrDisabled):
		fail(c, http.StatusForbidden, out.Err.Error())
		return
	case errors.Is(out.Err, command.ErrUnsupported):
		fail(c, http.StatusNotImplemented, out.Err.Error())
		return
	}
	if out.Err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   out.Err.Error(),
			"stdout":  out.Stdout,
			"stderr":  out.Stderr,
		})
		return
	}
	succeed(c, gin.H{"stdout": out.Stdout, "stderr": out.Stderr})
}
