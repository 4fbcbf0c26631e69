package handlers

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/greenmart/greenmart-backend/pkg/models"
	"github.com/greenmart/greenmart-backend/pkg/repository"
	"github.com/greenmart/greenmart-backend/pkg/voucher"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgUserMissing     = "Không tìm thấy người dùng"
	msgVoucherNotHeld  = "Người dùng không sở hữu voucher này"
	msgVoucherConflict = "Voucher của người dùng vừa được cập nhật, vui lòng thử lại"
	msgVoucherInvalid  = "Mã voucher không hợp lệ"
)

//go:generate mockgen -source=voucher.go -destination=mock_handlers/mock_voucher.go -package=mock_handlers

// VoucherHoldings is implemented by repository.UserRepository.
type VoucherHoldings interface {
	Holdings(ctx context.Context, userID primitive.ObjectID) (voucher.Holdings, error)
	Redeem(ctx context.Context, userID primitive.ObjectID, voucherID string) (voucher.Holdings, error)
	Release(ctx context.Context, userID primitive.ObjectID, voucherID string) (voucher.Holdings, error)
}

type VoucherHandler struct {
	holdings VoucherHoldings
}

func NewVoucherHandler(holdings VoucherHoldings) *VoucherHandler {
	return &VoucherHandler{holdings: holdings}
}

func (h *VoucherHandler) Get(c *gin.Context) {
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	holdings, err := h.holdings.Holdings(c.Request.Context(), userID)
	h.respond(c, "GetVouchers", userID, "", holdings, err)
}

func (h *VoucherHandler) Redeem(c *gin.Context) {
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}
	voucherID := c.Param("voucherId")

	holdings, err := h.holdings.Redeem(c.Request.Context(), userID, voucherID)
	h.respond(c, "RedeemVoucher", userID, voucherID, holdings, err)
}

func (h *VoucherHandler) Release(c *gin.Context) {
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}
	voucherID := c.Param("voucherId")

	holdings, err := h.holdings.Release(c.Request.Context(), userID, voucherID)
	h.respond(c, "ReleaseVoucher", userID, voucherID, holdings, err)
}

func (h *VoucherHandler) respond(c *gin.Context, op string, userID primitive.ObjectID, voucherID string, holdings voucher.Holdings, err error) {
	if err != nil {
		log := logrus.WithFields(logrus.Fields{
			"user_id":    userID.Hex(),
			"voucher_id": voucherID,
		})

		switch {
		case errors.Is(err, voucher.ErrInvalidID):
			log.Warn(op + ": Invalid voucher id")
			c.JSON(http.StatusBadRequest, gin.H{"error": msgVoucherInvalid})
		case errors.Is(err, repository.ErrUserNotFound):
			log.Warn(op + ": User not found")
			c.JSON(http.StatusNotFound, gin.H{"error": msgUserMissing})
		case errors.Is(err, repository.ErrVoucherNotHeld):
			log.Warn(op + ": Voucher not held")
			c.JSON(http.StatusNotFound, gin.H{"error": msgVoucherNotHeld})
		case errors.Is(err, repository.ErrVoucherConflict):
			log.Warn(op + ": Concurrent voucher update")
			c.JSON(http.StatusConflict, gin.H{"error": msgVoucherConflict})
		default:
			log.WithError(err).Error(op + ": Failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
		}
		return
	}

	if holdings == nil {
		holdings = voucher.Holdings{}
	}
	c.JSON(http.StatusOK, models.VoucherHoldingsResponse{
		UserID:   userID.Hex(),
		Vouchers: holdings,
	})
}
