package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/myproject/orders/internal/httpx"
	"github.com/myproject/orders/internal/order"
)

// createOrderHandler validates the payload before touching the service:
// requests with a blank external id or a missing items list never reach the
// pipeline.
func createOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.AbortProblem(c, http.StatusBadRequest, "invalid json body")
			return
		}
		if strings.TrimSpace(req.ExternalID) == "" {
			httpx.AbortProblem(c, http.StatusBadRequest, "external_id is required and cannot be blank")
			return
		}
		if req.Items == nil {
			httpx.AbortProblem(c, http.StatusBadRequest, "items list cannot be null")
			return
		}

		o, err := svc.ProcessReceived(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, order.ErrDuplicate) {
				httpx.AbortProblem(c, http.StatusConflict, err.Error())
				return
			}
			httpx.AbortProblem(c, http.StatusInternalServerError, "failed to process order")
			return
		}
		c.JSON(http.StatusCreated, order.ToResponse(o))
	}
}

// listOrdersHandler accepts ?page, ?size and ?sort=col,dir (Spring style),
// defaulting to page 0, size 10, id ascending.
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := order.ListQuery{}
		q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
		q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "10"))
		if sort := c.Query("sort"); sort != "" {
			parts := strings.SplitN(sort, ",", 2)
			q.Sort = parts[0]
			q.Desc = len(parts) == 2 && strings.EqualFold(parts[1], "desc")
		}

		page, err := svc.List(c.Request.Context(), q)
		if err != nil {
			httpx.AbortProblem(c, http.StatusInternalServerError, "failed to list orders")
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			httpx.AbortProblem(c, http.StatusBadRequest, "id must be numeric")
			return
		}
		o, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				httpx.AbortProblem(c, http.StatusNotFound, err.Error())
				return
			}
			httpx.AbortProblem(c, http.StatusInternalServerError, "failed to get order")
			return
		}
		c.JSON(http.StatusOK, order.ToResponse(o))
	}
}

func deleteOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			httpx.AbortProblem(c, http.StatusBadRequest, "id must be numeric")
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, order.ErrNotFound) {
				httpx.AbortProblem(c, http.StatusNotFound, err.Error())
				return
			}
			httpx.AbortProblem(c, http.StatusInternalServerError, "failed to delete order")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
