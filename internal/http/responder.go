package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/serenity-bookings/internal/application"
)

var (
	errBadRequestBody    = errors.New("Format de requête invalide.")
	errInvalidBookingRef = errors.New("Référence de réservation invalide.")
	errInvalidServiceID  = errors.New("Identifiant de prestation invalide.")
	errMissingToken      = errors.New("Veuillez fournir un jeton d'authentification.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Vous n'avez pas les droits nécessaires pour effectuer cette opération.",
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "Email ou mot de passe incorrect."})
	case errors.Is(err, application.ErrAccountDisabled):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{Message: "Ce compte a été désactivé."})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "La ressource demandée est introuvable."})
	case errors.Is(err, application.ErrSlotTaken):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Ce créneau vient d'être réservé. Veuillez en choisir un autre."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Une prestation avec cet identifiant existe déjà."})
	case errors.Is(err, application.ErrServiceInUse):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Cette prestation est liée à des réservations et ne peut pas être supprimée."})
	case errors.Is(err, application.ErrPaymentNotConfirmed):
		r.writeJSON(ctx, w, http.StatusPaymentRequired, errorResponse{Message: "Le paiement n'a pas encore été validé."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			details := localizeValidationErrors(vErr)
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Le contenu saisi est invalide.",
				Errors:  details,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Une erreur interne est survenue."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "La requête est incorrecte."
	case http.StatusUnauthorized:
		return "Authentification requise."
	case http.StatusPaymentRequired:
		return "Le paiement n'a pas encore été validé."
	case http.StatusForbidden:
		return "Vous n'avez pas les droits nécessaires pour effectuer cette opération."
	case http.StatusNotFound:
		return "La ressource demandée est introuvable."
	case http.StatusConflict:
		return "La requête entre en conflit avec l'état actuel de la ressource."
	case http.StatusUnprocessableEntity:
		return "Le contenu saisi est invalide."
	default:
		return "Une erreur interne est survenue."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "service is required":
		return "Veuillez choisir une prestation."
	case "service is inactive":
		return "Cette prestation n'est plus proposée."
	case "date is required":
		return "La date est obligatoire."
	case "date must use the YYYY-MM-DD format":
		return "La date doit être au format AAAA-MM-JJ."
	case "time is required":
		return "L'horaire est obligatoire."
	case "time is not a bookable slot":
		return "Cet horaire ne correspond à aucun créneau proposé."
	case "first name is required":
		return "Le prénom est obligatoire."
	case "last name is required":
		return "Le nom est obligatoire."
	case "email is required":
		return "L'adresse email est obligatoire."
	case "email is invalid":
		return "L'adresse email est invalide."
	case "phone is required":
		return "Le numéro de téléphone est obligatoire."
	case "booking type must be guest or registered":
		return "Le type de réservation est invalide."
	case "password is required":
		return "Le mot de passe est obligatoire."
	case "id is required":
		return "L'identifiant est obligatoire."
	case "name is required":
		return "Le nom est obligatoire."
	case "price must not be negative":
		return "Le prix ne peut pas être négatif."
	case "status is invalid":
		return "Le statut est invalide."
	case "payment status is invalid":
		return "Le statut de paiement est invalide."
	case "amount does not match the booking price":
		return "Le montant ne correspond pas au prix de la réservation."
	case "booking id is required":
		return "L'identifiant de réservation est obligatoire."
	case "payment intent id is required":
		return "L'identifiant du paiement est obligatoire."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
