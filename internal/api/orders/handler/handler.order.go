// Package orderhdl exposes the order lifecycle over HTTP. Every route accepts
// an optional ?env=virtual query to address the virtual catalog environment;
// the default is the regular one.
package orderhdl

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/orimhanre/distrinaranjos-sub004/internal/api/base/handler"
	orderdto "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/dto"
	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	ordersvc "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/service"
	orderstore "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/store"
	"github.com/orimhanre/distrinaranjos-sub004/internal/common"
	"github.com/orimhanre/distrinaranjos-sub004/internal/documents"
	"github.com/orimhanre/distrinaranjos-sub004/internal/logger"
	"github.com/orimhanre/distrinaranjos-sub004/internal/notification"
)

// EnvServices bundles the per-environment collaborators.
type EnvServices struct {
	Store     *orderstore.RecordStore
	Sync      *ordersvc.DualWriteCoordinator
	Lifecycle *ordersvc.LifecycleManager
	Deleter   *ordersvc.BatchDeleter
	Notifier  *notification.Service
}

// OrderHandler routes order operations onto the environment the request
// addresses.
type OrderHandler struct {
	regular   *EnvServices
	virtual   *EnvServices
	documents documents.Generator
}

// NewOrderHandler wires the handler over both environments. generator may be
// nil when no renderer is configured.
func NewOrderHandler(regular, virtual *EnvServices, generator documents.Generator) *OrderHandler {
	return &OrderHandler{regular: regular, virtual: virtual, documents: generator}
}

func (h *OrderHandler) services(c fiber.Ctx) *EnvServices {
	if strings.EqualFold(c.Query("env"), "virtual") {
		return h.virtual
	}
	return h.regular
}

// identifier returns the URL-decoded order identifier path parameter.
func identifier(c fiber.Ctx) string {
	raw := c.Params("identifier")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// HandleGetOrder resolves one order from a loose identifier.
func (h *OrderHandler) HandleGetOrder(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		record, err := h.services(c).Sync.Resolve(c.Context(), identifier(c))
		basehdl.HandleResponse(c, record, err)
		return nil
	})
}

// HandleListClientOrders lists the canonical orders of one client.
func (h *OrderHandler) HandleListClientOrders(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		email := strings.ToLower(c.Params("email"))
		if decoded, err := url.PathUnescape(email); err == nil {
			email = decoded
		}
		records, err := h.services(c).Store.Orders.ListByClient(c.Context(), email)
		basehdl.HandleResponse(c, records, err)
		return nil
	})
}

// HandleUpdateOrder applies a partial update across every store holding a
// copy of the order.
func (h *OrderHandler) HandleUpdateOrder(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input orderdto.OrderUpdateInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := orderdto.Validate(input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		patch := ordersvc.OrderPatch{
			PaymentMethod:   input.PaymentMethod,
			TrackingNumber:  input.TrackingNumber,
			TrackingCourier: input.TrackingCourier,
		}
		if input.Status != nil {
			status := ordermodels.OrderStatus(*input.Status)
			patch.Status = &status
		}
		if input.PaymentStatus != nil {
			payment := ordermodels.PaymentStatus(*input.PaymentStatus)
			patch.PaymentStatus = &payment
		}

		result, err := h.services(c).Sync.ApplyUpdate(c.Context(), identifier(c), patch)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleAppendMessage appends an admin note and optionally pushes it to the
// client's devices. Push failure never fails the append.
func (h *OrderHandler) HandleAppendMessage(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input orderdto.AdminMessageInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := orderdto.Validate(input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		svc := h.services(c)
		result, err := svc.Sync.ApplyUpdate(c.Context(), identifier(c), ordersvc.OrderPatch{
			AppendMessage: &ordermodels.AdminMessage{
				Message:     input.Message,
				Attachments: input.Attachments,
			},
		})
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		if input.Notify {
			if _, pushErr := svc.Notifier.NotifyClient(c.Context(), result.Order.ClientEmail,
				"Nuevo mensaje de DistriNaranjos", input.Message,
				map[string]string{"orderToken": result.Order.OrderToken}); pushErr != nil {
				logger.GetAppLogger().WithError(pushErr).Warn("Push delivery failed after message append")
			}
		}

		basehdl.HandleResponse(c, result, nil)
		return nil
	})
}

// HandleMarkMessagesRead flips isRead on every admin message of the order.
func (h *OrderHandler) HandleMarkMessagesRead(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		result, err := h.services(c).Sync.MarkMessagesRead(c.Context(), identifier(c))
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleGenerateDocument renders the order into a hosted document and stores
// its URL on the record.
func (h *OrderHandler) HandleGenerateDocument(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		if h.documents == nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeInternalServer,
				"Document renderer is not configured",
				common.StatusNotImplemented,
				nil,
			))
			return nil
		}

		svc := h.services(c)
		record, err := svc.Sync.Resolve(c.Context(), identifier(c))
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		docURL, err := h.documents.Render(c.Context(), record)
		if err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		result, err := svc.Sync.ApplyUpdate(c.Context(), identifier(c), ordersvc.OrderPatch{
			DocumentURL: &docURL,
		})
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleSoftDelete archives the order and removes it from the active stores.
func (h *OrderHandler) HandleSoftDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		archived, err := h.services(c).Lifecycle.SoftDelete(c.Context(), identifier(c))
		basehdl.HandleResponse(c, archived, err)
		return nil
	})
}

// HandlePermanentDelete destroys one archived order immediately.
func (h *OrderHandler) HandlePermanentDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		orderID := identifier(c)
		err := h.services(c).Lifecycle.PermanentDelete(c.Context(), orderID)
		basehdl.HandleResponse(c, fiber.Map{"orderId": orderID}, err)
		return nil
	})
}

// HandlePurge runs one purge pass over expired archive entries.
func (h *OrderHandler) HandlePurge(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		result, err := h.services(c).Lifecycle.PurgeExpired(c.Context(), time.Now())
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleMigrateProfile migrates one legacy profile's embedded orders into the
// canonical store.
func (h *OrderHandler) HandleMigrateProfile(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input orderdto.MigrateProfileInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := orderdto.Validate(input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.services(c).Lifecycle.MigrateProfile(c.Context(), input.Email)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleMigrateAll migrates every legacy profile of the environment.
func (h *OrderHandler) HandleMigrateAll(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		result, err := h.services(c).Lifecycle.MigrateAll(c.Context())
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleIdentityDelete removes every record of one client identity.
func (h *OrderHandler) HandleIdentityDelete(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input orderdto.IdentityDeleteInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := orderdto.Validate(input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.services(c).Deleter.DeleteAllForIdentity(c.Context(), input.Email, input.ExternalID)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleRegisterDevice registers one push recipient token.
func (h *OrderHandler) HandleRegisterDevice(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var input orderdto.RegisterTokenInput
		if err := c.Bind().Body(&input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		if err := orderdto.Validate(input); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		token, err := h.services(c).Notifier.RegisterDevice(c.Context(), input.Email, input.Token)
		basehdl.HandleResponse(c, token, err)
		return nil
	})
}
