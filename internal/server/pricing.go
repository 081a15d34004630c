package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	pricingdomain "github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/domain"
	"github.com/ryu-qqq/setof-commerce-sub024/pkg/log/ctxlogger"
	"go.uber.org/zap"
)

type orderLineRequest struct {
	ProductID  string `json:"product_id"`
	CategoryID string `json:"category_id"`
	SellerID   string `json:"seller_id"`
	BrandID    string `json:"brand_id"`
	LineAmount int64  `json:"line_amount"`
	Quantity   int64  `json:"quantity"`
}

type evaluateRequest struct {
	Line     orderLineRequest `json:"line"`
	MemberID string           `json:"member_id"`
}

type releaseRequest struct {
	PolicyID       string `json:"policy_id"`
	MemberID       string `json:"member_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (s *Server) EvaluatePricing(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	line, err := req.Line.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	memberID, err := parseOptionalMemberID(req.MemberID)
	if err != nil {
		AbortWithError(c, newValidationError("member_id", "invalid_member_id", "member_id must be a numeric id"))
		return
	}

	resp, err := s.pricingSvc.Evaluate(c.Request.Context(), line, memberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ReleaseDiscountUsage gives back one use of a policy. Requests repeating an
// idempotency key within the dedup window are acknowledged without releasing
// again.
func (s *Server) ReleaseDiscountUsage(c *gin.Context) {
	var req releaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	policyID, err := parseSnowflakeID(req.PolicyID)
	if err != nil || policyID == 0 {
		AbortWithError(c, newValidationError("policy_id", "invalid_policy_id", "policy_id is required"))
		return
	}
	memberID, err := parseOptionalMemberID(req.MemberID)
	if err != nil {
		AbortWithError(c, newValidationError("member_id", "invalid_member_id", "member_id must be a numeric id"))
		return
	}

	ctx := c.Request.Context()
	token, first, err := s.limiter.FirstRelease(ctx, req.IdempotencyKey)
	if err != nil {
		ctxlogger.WithContext(ctx, s.log).Warn("release dedup check failed", zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	if !first {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"released": false, "duplicate": true}})
		return
	}

	if err := s.pricingSvc.Release(ctx, policyID, memberID); err != nil {
		if forgetErr := s.limiter.ForgetRelease(ctx, req.IdempotencyKey, token); forgetErr != nil {
			ctxlogger.WithContext(ctx, s.log).Warn("release dedup rollback failed", zap.Error(forgetErr))
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"released": true, "duplicate": false}})
}

func (r orderLineRequest) toDomain() (pricingdomain.OrderLine, error) {
	line := pricingdomain.OrderLine{
		LineAmount: r.LineAmount,
		Quantity:   r.Quantity,
	}
	fields := []struct {
		name string
		raw  string
		dst  *snowflake.ID
	}{
		{name: "product_id", raw: r.ProductID, dst: &line.ProductID},
		{name: "category_id", raw: r.CategoryID, dst: &line.CategoryID},
		{name: "seller_id", raw: r.SellerID, dst: &line.SellerID},
		{name: "brand_id", raw: r.BrandID, dst: &line.BrandID},
	}
	for _, field := range fields {
		parsed, err := parseSnowflakeID(field.raw)
		if err != nil {
			return pricingdomain.OrderLine{}, newValidationError(field.name, "invalid_"+field.name, field.name+" must be a numeric id")
		}
		*field.dst = parsed
	}
	return line, nil
}

func parseSnowflakeID(value string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, errors.New("empty id")
	}
	return snowflake.ParseString(trimmed)
}

// parseOptionalMemberID maps a missing member to the anonymous id 0.
func parseOptionalMemberID(value string) (snowflake.ID, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	return parseSnowflakeID(value)
}
