package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/redmath/phonebook/internal/core/domain"
	"github.com/redmath/phonebook/internal/core/ports"
)

// ContactHandler exposes the phonebook.
type ContactHandler struct {
	service ports.ContactService
}

func NewContactHandler(service ports.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

type contactRequest struct {
	Name   string `json:"name"   validate:"notblank,alphaspace"`
	Number string `json:"number" validate:"notblank,digits"`
	Email  string `json:"email"  validate:"omitempty,email"`
}

type updateContactRequest struct {
	ID     string `json:"id"     validate:"notblank"`
	Name   string `json:"name"   validate:"notblank,alphaspace"`
	Number string `json:"number" validate:"notblank,digits"`
	Email  string `json:"email"  validate:"omitempty,email"`
}

type saveContactResponse struct {
	Message string          `json:"message"`
	Contact *domain.Contact `json:"contact"`
}

// List returns every contact.
//
// @Summary      List contacts
// @Tags         contacts
// @Produce      json
// @Success      200  {array}  domain.Contact
// @Router       /api/getContacts [get]
func (h *ContactHandler) List(c echo.Context) error {
	contacts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if contacts == nil {
		contacts = []*domain.Contact{}
	}
	return c.JSON(http.StatusOK, contacts)
}

// Save stores a new contact. Any id in the body is ignored.
//
// @Summary      Save contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        body  body      contactRequest  true  "Contact"
// @Success      200   {object}  saveContactResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/saveContact [post]
func (h *ContactHandler) Save(c echo.Context) error {
	var req contactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.service.Save(c.Request().Context(), domain.Contact{
		Name:   req.Name,
		Number: req.Number,
		Email:  req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saveContactResponse{Message: "Contact saved", Contact: created})
}

// Update replaces an existing contact.
//
// @Summary      Update contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateContactRequest  true  "Contact"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/updateContact [put]
func (h *ContactHandler) Update(c echo.Context) error {
	var req updateContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.service.Update(c.Request().Context(), domain.Contact{
		ID:     req.ID,
		Name:   req.Name,
		Number: req.Number,
		Email:  req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Contact updated"})
}

// Delete removes a contact by id.
//
// @Summary      Delete contact
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contact id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/deleteContact/{id} [delete]
func (h *ContactHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Contact deleted"})
}

// DeleteAll empties the phonebook.
//
// @Summary      Delete all contacts
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/deleteAll [delete]
func (h *ContactHandler) DeleteAll(c echo.Context) error {
	if err := h.service.DeleteAll(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "All contacts deleted"})
}
