package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/apperror"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/web/response"
)

const formIDKey = "form_id"

const (
	msgDelivered = "Message sent successfully! I'll get back to you soon."
	msgFallback  = "We couldn't send your message automatically, so your email app has been opened with it instead."
	msgBusy      = "Your message is already being sent."
	msgExpired   = "Your form session expired. Please try again."
	msgInvalid   = "Please fix the highlighted fields."
)

// MailClientLauncher opens the visitor's mail client by answering the HTMX
// request with an HX-Redirect to the mailto URI. The context must be the
// *gin.Context of the submit request.
func MailClientLauncher() contact.Launcher {
	return contact.LauncherFunc(func(ctx context.Context, uri string) error {
		c, ok := ctx.(*gin.Context)
		if !ok {
			return errors.New("launch mail client: no request to answer")
		}
		if c.GetHeader("HX-Request") == "true" {
			c.Header("HX-Redirect", uri)
		}
		return nil
	})
}

// form returns the visitor's contact form, binding a new one to the session if needed.
func (h *handler) form(c *gin.Context) (*contact.Form, error) {
	session := sessions.Default(c)
	id, _ := session.Get(formIDKey).(string)
	f, acquired := h.forms.Acquire(id)
	if acquired != id {
		session.Set(formIDKey, acquired)
		if err := session.Save(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (h *handler) renderForm(c *gin.Context, code int, view contact.View, notice string) {
	c.HTML(code, "contact-form.html", gin.H{
		"form":     view,
		"notice":   notice,
		"services": h.site.Services,
		"methods":  h.site.ContactMethods,
		"email":    h.cfg.ContactEmail,
	})
}

func (h *handler) contactForm(c *gin.Context) {
	f, err := h.form(c)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	h.renderForm(c, http.StatusOK, f.View(), "")
}

// updateField stores one field as the visitor types. Message edits answer
// with the character counter; other fields need no response body.
func (h *handler) updateField(c *gin.Context) {
	field := c.PostForm("field")
	f, err := h.form(c)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	switch err := f.UpdateField(field, c.PostForm(field)); {
	case errors.Is(err, contact.ErrUnknownField):
		c.Error(apperror.BadRequest("Unknown field"))
		return
	case errors.Is(err, contact.ErrClosed):
		c.Error(apperror.Conflict(msgExpired))
		return
	case errors.Is(err, contact.ErrBusy):
		c.Error(apperror.Conflict(msgBusy))
		return
	case err != nil:
		c.Error(apperror.Internal(err))
		return
	}

	if field != contact.FieldMessage {
		c.Status(http.StatusNoContent)
		return
	}
	c.HTML(http.StatusOK, "contact-counter.html", gin.H{"form": f.View()})
}

func (h *handler) submitContact(c *gin.Context) {
	f, err := h.form(c)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	var sub contact.Submission
	for _, field := range contact.Fields() {
		sub.Set(field, h.fieldValue(field, c.PostForm(field)))
	}

	view, outcome, err := f.SubmitWith(c, sub)
	if err != nil {
		h.submitFailed(c, f, err)
		return
	}
	h.recordOutcome(c, outcome)

	// Delivered forms show the success banner from the view itself.
	notice := ""
	if outcome == contact.OutcomeFallback {
		notice = msgFallback
	}
	h.renderForm(c, http.StatusOK, view, notice)
}

func (h *handler) submitFailed(c *gin.Context, f *contact.Form, err error) {
	switch {
	case errors.Is(err, contact.ErrBusy):
		contactSubmissions.WithLabelValues("busy").Inc()
		h.renderForm(c, http.StatusConflict, f.View(), msgBusy)
	case errors.Is(err, contact.ErrClosed):
		c.Error(apperror.Conflict(msgExpired))
	default:
		c.Error(apperror.Internal(err))
	}
}

// fieldValue drops a service that is not on offer.
func (h *handler) fieldValue(field, value string) string {
	if field == contact.FieldService && value != "" && !h.site.HasService(value) {
		return ""
	}
	return value
}

// contactStatus is polled while the success banner shows; it goes away once the form clears it.
// Polling never binds a new form to the session.
func (h *handler) contactStatus(c *gin.Context) {
	var view contact.View
	id, _ := sessions.Default(c).Get(formIDKey).(string)
	if f, ok := h.forms.Lookup(id); ok {
		view = f.View()
	}
	c.HTML(http.StatusOK, "contact-status.html", gin.H{"form": view})
}

func (h *handler) submitContactAPI(c *gin.Context) {
	var req contact.Submission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	f, err := h.form(c)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	req.Service = h.fieldValue(contact.FieldService, req.Service)

	view, outcome, err := f.SubmitWith(c, req)
	if err != nil {
		h.apiSubmitFailed(c, err)
		return
	}
	h.recordOutcome(c, outcome)

	switch outcome {
	case contact.OutcomeInvalid:
		response.Error(c, http.StatusUnprocessableEntity, msgInvalid, view.Errors)
	case contact.OutcomeDelivered:
		response.Success(c, http.StatusOK, msgDelivered, gin.H{"state": view.State.String()})
	default:
		response.Success(c, http.StatusAccepted, msgFallback, gin.H{
			"state":  view.State.String(),
			"mailto": view.MailtoURI,
		})
	}
}

func (h *handler) apiSubmitFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, contact.ErrBusy):
		contactSubmissions.WithLabelValues("busy").Inc()
		c.Error(apperror.Conflict(msgBusy))
	case errors.Is(err, contact.ErrClosed):
		c.Error(apperror.Conflict(msgExpired))
	default:
		c.Error(apperror.Internal(err))
	}
}

func (h *handler) recordOutcome(c *gin.Context, outcome contact.Outcome) {
	contactSubmissions.WithLabelValues(outcome.String()).Inc()
	if err := h.store.RecordContactOutcome(c.Request.Context(), outcome.String(), time.Now()); err != nil {
		h.log.Warn("error recording contact outcome", zap.Error(err))
	}
}
