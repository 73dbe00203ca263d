package ordersvc

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	ordermodels "github.com/orimhanre/distrinaranjos-sub004/internal/api/orders/models"
	"github.com/orimhanre/distrinaranjos-sub004/internal/utility"
)

// Alias tables: for each canonical client field, the historical key names in
// priority order. Upstream data was produced by several schema generations
// and two locales, so every lookup walks the full list and takes the first
// non-empty value. These tables are consumed only by the normalizer.
var clientAliases = map[string][]string{
	"name":       {"nombre", "firstName", "name"},
	"surname":    {"apellido", "lastName", "surname"},
	"company":    {"empresa", "company"},
	"phone":      {"celular", "telefono", "phone"},
	"address":    {"direccion", "address"},
	"city":       {"ciudad", "city"},
	"department": {"departamento", "department"},
	"email":      {"correo", "email"},
	"externalId": {"cedula", "externalId", "userId"},
}

// NormalizeClient maps an arbitrary bag of legacy field names onto the
// canonical Client shape. Total function: absent or unparseable values yield
// empty strings, never an error.
func NormalizeClient(raw map[string]interface{}) ordermodels.Client {
	pick := func(canonical string) string {
		for _, alias := range clientAliases[canonical] {
			if v := utility.GetString(raw, alias); v != "" {
				return v
			}
		}
		return ""
	}

	return ordermodels.Client{
		Name:       pick("name"),
		Surname:    pick("surname"),
		Company:    pick("company"),
		Phone:      pick("phone"),
		Address:    pick("address"),
		City:       pick("city"),
		Department: pick("department"),
		Email:      strings.ToLower(pick("email")),
		ExternalID: pick("externalId"),
	}
}

// NormalizeInstant coerces the heterogeneous timestamp shapes found in legacy
// data to epoch milliseconds. Handled: RFC3339 strings, native time values,
// driver datetimes, provider-style {seconds,nanos} maps and epoch numbers
// (seconds or millis, decided by magnitude). Unrecognized shapes normalize to
// zero rather than failing.
func NormalizeInstant(raw interface{}) int64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case time.Time:
		if v.IsZero() {
			return 0
		}
		return v.UnixMilli()
	case primitive.DateTime:
		return int64(v)
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UnixMilli()
			}
		}
		return 0
	case int64:
		return epochToMillis(v)
	case int32:
		return epochToMillis(int64(v))
	case int:
		return epochToMillis(int64(v))
	case float64:
		return epochToMillis(int64(v))
	case map[string]interface{}:
		return instantFromSecondsMap(v)
	case bson.M:
		return instantFromSecondsMap(v)
	default:
		return 0
	}
}

// instantFromSecondsMap reads provider-native timestamp objects serialized as
// {seconds,nanos} or {_seconds,_nanoseconds}.
func instantFromSecondsMap(m map[string]interface{}) int64 {
	secs := numberAt(m, "seconds")
	if secs == 0 {
		secs = numberAt(m, "_seconds")
	}
	if secs == 0 {
		return 0
	}
	nanos := numberAt(m, "nanos")
	if nanos == 0 {
		nanos = numberAt(m, "_nanoseconds")
	}
	return secs*1000 + nanos/1_000_000
}

func numberAt(m map[string]interface{}, key string) int64 {
	switch n := m[key].(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// epochToMillis decides seconds vs millis by magnitude; anything below
// 1e12 is epoch seconds (that bound is year 33658 in seconds, 2001 in millis).
func epochToMillis(v int64) int64 {
	if v <= 0 {
		return 0
	}
	if v < 1_000_000_000_000 {
		return v * 1000
	}
	return v
}

// NormalizeOrderSnapshot synthesizes a canonical OrderRecord from a legacy
// embedded snapshot. The original order token is preserved; a missing invoice
// number is synthesized so the record satisfies the canonical shape. Total
// function: malformed pieces degrade to safe defaults and processing
// continues.
func NormalizeOrderSnapshot(snapshot ordermodels.OrderSnapshot, client ordermodels.Client) ordermodels.OrderRecord {
	token := utility.FirstNonEmpty(
		utility.GetString(snapshot, "orderToken"),
		utility.GetString(snapshot, "invoiceNumber"),
		utility.GetString(snapshot, "orderNumber"),
		utility.GetString(snapshot, "numeroPedido"),
	)
	if token == "" {
		token = "MIG-" + uuid.NewString()
	}

	invoice := utility.FirstNonEmpty(
		utility.GetString(snapshot, "invoiceNumber"),
		utility.GetString(snapshot, "numeroFactura"),
		token,
	)

	status := ordermodels.OrderStatus(strings.ToLower(utility.FirstNonEmpty(
		utility.GetString(snapshot, "status"),
		utility.GetString(snapshot, "estado"),
	)))
	if !status.IsValid() {
		status = ordermodels.StatusNew
	}

	payment := ordermodels.PaymentStatus(strings.ToLower(utility.FirstNonEmpty(
		utility.GetString(snapshot, "paymentStatus"),
		utility.GetString(snapshot, "estadoPago"),
	)))
	if !payment.IsValid() {
		payment = ordermodels.PaymentPending
	}

	orderedAt := NormalizeInstant(firstPresent(snapshot, "orderedAt", "orderDate", "fecha", "createdAt", "date"))
	lastUpdated := NormalizeInstant(firstPresent(snapshot, "lastUpdated", "updatedAt"))
	if lastUpdated < orderedAt {
		lastUpdated = orderedAt
	}

	return ordermodels.OrderRecord{
		ClientEmail:   client.Email,
		OrderToken:    token,
		InvoiceNumber: invoice,
		Items:         normalizeItems(snapshot),
		Subtotal:      numberValue(snapshot, "subtotal"),
		ShippingCost:  firstNumber(snapshot, "shippingCost", "envio"),
		Total:         numberValue(snapshot, "total"),
		Status:        status,
		PaymentStatus: payment,
		PaymentMethod: utility.FirstNonEmpty(
			utility.GetString(snapshot, "paymentMethod"),
			utility.GetString(snapshot, "metodoPago"),
		),
		OrderedAt:     orderedAt,
		LastUpdated:   lastUpdated,
		DocumentURL:   utility.GetString(snapshot, "documentUrl"),
		Tracking:      normalizeTracking(snapshot),
		AdminMessages: normalizeMessages(snapshot),
	}
}

func firstPresent(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func numberValue(m map[string]interface{}, key string) float64 {
	switch n := m[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func firstNumber(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return numberValue(m, k)
		}
	}
	return 0
}

func asSlice(v interface{}) []interface{} {
	switch s := v.(type) {
	case []interface{}:
		return s
	case primitive.A:
		return []interface{}(s)
	}
	return nil
}

func asMap(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case bson.M:
		return map[string]interface{}(m)
	}
	return nil
}

func normalizeItems(snapshot ordermodels.OrderSnapshot) []ordermodels.OrderItem {
	raw := asSlice(firstPresent(snapshot, "items", "cartItems", "productos"))
	items := make([]ordermodels.OrderItem, 0, len(raw))
	for _, entry := range raw {
		m := asMap(entry)
		if m == nil {
			continue
		}
		qty := int(firstNumber(m, "qty", "quantity", "cantidad"))
		if qty == 0 {
			qty = 1
		}
		items = append(items, ordermodels.OrderItem{
			ProductID: utility.FirstNonEmpty(utility.GetString(m, "productId"), utility.GetString(m, "id")),
			Name:      utility.FirstNonEmpty(utility.GetString(m, "name"), utility.GetString(m, "nombre")),
			Quantity:  qty,
			UnitPrice: firstNumber(m, "unitPrice", "price", "precio"),
			Variant:   utility.FirstNonEmpty(utility.GetString(m, "variant"), utility.GetString(m, "color")),
			Brand:     utility.FirstNonEmpty(utility.GetString(m, "brand"), utility.GetString(m, "marca")),
		})
	}
	return items
}

func normalizeTracking(snapshot ordermodels.OrderSnapshot) ordermodels.Tracking {
	if m := asMap(snapshot["tracking"]); m != nil {
		return ordermodels.Tracking{
			Number:  utility.GetString(m, "number"),
			Courier: utility.GetString(m, "courier"),
		}
	}
	return ordermodels.Tracking{
		Number:  utility.GetString(snapshot, "trackingNumber"),
		Courier: utility.GetString(snapshot, "courier"),
	}
}

func normalizeMessages(snapshot ordermodels.OrderSnapshot) []ordermodels.AdminMessage {
	raw := asSlice(firstPresent(snapshot, "adminMessages", "comments", "comentarios"))
	messages := make([]ordermodels.AdminMessage, 0, len(raw))
	for _, entry := range raw {
		m := asMap(entry)
		if m == nil {
			continue
		}
		text := utility.FirstNonEmpty(utility.GetString(m, "message"), utility.GetString(m, "text"))
		if text == "" {
			continue
		}
		isRead, _ := m["isRead"].(bool)
		messages = append(messages, ordermodels.AdminMessage{
			Message:     text,
			At:          NormalizeInstant(firstPresent(m, "at", "date", "createdAt")),
			IsRead:      isRead,
			Attachments: stringSlice(m["attachments"]),
		})
	}
	return messages
}

func stringSlice(v interface{}) []string {
	raw := asSlice(v)
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		if s, ok := entry.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
