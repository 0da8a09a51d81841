package controller

import (
	"github.com/gin-gonic/gin"

	"xide/service/visit"
)

type VisitController struct {
	counter *visit.Counter
}

func NewVisitController(counter *visit.Counter) *VisitController {
	return &VisitController{counter: counter}
}

// Increment counts a visit and returns the new total.
func (vc *VisitController) Increment(c *gin.Context) {
	succeed(c, gin.H{"count": vc.counter.Increment()})
}

func (vc *VisitController) Current(c *gin.Context) {
	succeed(c, gin.H{"count": vc.counter.Current()})
}
