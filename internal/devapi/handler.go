package devapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"
	"backoffice/internal/usecase"
)

// 上流と同じ {code, msg, data}
type Envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

type userList struct {
	List  []model.User `json:"list"`
	Total int64        `json:"total"`
}

// 商品一覧は records で返す
type productList struct {
	Records []model.Product `json:"records"`
	Total   int64           `json:"total"`
}

type updateQuantityRequest struct {
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
}

type removeRequest struct {
	UserNo    string `json:"userNo"`
	ProductNo string `json:"productNo"`
}

type clearRequest struct {
	UserNo string `json:"userNo"`
}

type batchRequest struct {
	OrderItems []model.OrderItem `json:"orderItems"`
	OrderNo    string            `json:"orderNo"`
}

type Handler struct {
	svc *Service
	log *zap.Logger
}

// DI
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/auth/list", h.listUsers)
	e.GET("/product/list", h.listProducts)

	e.GET("/cart/user/:userNo", h.userCart)
	e.POST("/cart/add", h.addToCart)
	e.POST("/cart/update-quantity", h.updateQuantity)
	e.POST("/cart/remove", h.removeFromCart)
	e.POST("/cart/clear", h.clearCart)

	e.POST("/order", h.createOrder)
	e.GET("/order/:no", h.getOrder)
	e.DELETE("/order/:no", h.deleteOrder)
	e.POST("/order-item/batch", h.createOrderItems)

	e.POST("/dev/seed", h.seed)
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Code: 0, Msg: "ok", Data: data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Code: status, Msg: msg})
}

func (h *Handler) writeError(c echo.Context, err error) error {
	if he, ok := usecase.AsHTTPError(err); ok {
		return fail(c, he.Status, he.Message)
	}
	h.log.Error("devapi request failed", zap.String("path", c.Path()), zap.Error(err))
	return fail(c, http.StatusInternalServerError, "internal error")
}

// page / pageSize / keyword
func pageQuery(c echo.Context) model.PageQuery {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("pageSize"))
	return model.PageQuery{Page: page, PageSize: size, Keyword: c.QueryParam("keyword")}
}

func (h *Handler) listUsers(c echo.Context) error {
	p, err := h.svc.SearchUsers(c.Request().Context(), pageQuery(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, userList{List: p.List, Total: p.Total})
}

func (h *Handler) listProducts(c echo.Context) error {
	p, err := h.svc.SearchProducts(c.Request().Context(), pageQuery(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, productList{Records: p.List, Total: p.Total})
}

func (h *Handler) userCart(c echo.Context) error {
	cart, err := h.svc.UserCart(c.Request().Context(), c.Param("userNo"))
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, cart)
}

func (h *Handler) addToCart(c echo.Context) error {
	var req repo.AddToCartInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	item, err := h.svc.AddToCart(c.Request().Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, item)
}

func (h *Handler) updateQuantity(c echo.Context) error {
	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	item, err := h.svc.UpdateQuantity(c.Request().Context(), req.ID, req.Quantity)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, item)
}

func (h *Handler) removeFromCart(c echo.Context) error {
	var req removeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.svc.RemoveFromCart(c.Request().Context(), req.UserNo, req.ProductNo); err != nil {
		return h.writeError(c, err)
	}
	return ok(c, nil)
}

func (h *Handler) clearCart(c echo.Context) error {
	var req clearRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if err := h.svc.ClearCart(c.Request().Context(), req.UserNo); err != nil {
		return h.writeError(c, err)
	}
	return ok(c, nil)
}

func (h *Handler) createOrder(c echo.Context) error {
	var req model.Order
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	o, err := h.svc.CreateOrder(c.Request().Context(), req)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, o)
}

func (h *Handler) getOrder(c echo.Context) error {
	d, err := h.svc.GetOrder(c.Request().Context(), c.Param("no"))
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, d)
}

func (h *Handler) deleteOrder(c echo.Context) error {
	if err := h.svc.DeleteOrder(c.Request().Context(), c.Param("no")); err != nil {
		return h.writeError(c, err)
	}
	return ok(c, nil)
}

// 不正な明細も200（success:false）
func (h *Handler) createOrderItems(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	res, err := h.svc.CreateOrderItems(c.Request().Context(), req.OrderNo, req.OrderItems)
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, res)
}

func (h *Handler) seed(c echo.Context) error {
	res, err := h.svc.Seed(c.Request().Context())
	if err != nil {
		return h.writeError(c, err)
	}
	return ok(c, res)
}
