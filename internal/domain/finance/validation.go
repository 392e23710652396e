package finance

import (
	"fmt"
	"strings"
)

// PaymentViolation describes one invalid field of one payment record
type PaymentViolation struct {
	Index   int    `json:"index"` // position of the record in the submitted list
	Field   string `json:"field"`
	Message string `json:"message"` // French, user-facing
}

// ValidationError aggregates every violation found in a submitted record list.
// The whole batch is rejected together - no partial acceptance, no fail-fast.
type ValidationError struct {
	Violations []PaymentViolation `json:"violations"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("ligne %d: %s", v.Index+1, v.Message))
	}
	return "paiement invalide: " + strings.Join(msgs, "; ")
}

// ValidatePaymentData validates a list of payment records before acceptance.
// Every record is checked; the full list of violations is returned at once.
func ValidatePaymentData(records []PaymentRecord) error {
	var violations []PaymentViolation

	add := func(index int, field, message string) {
		violations = append(violations, PaymentViolation{Index: index, Field: field, Message: message})
	}

	for i := range records {
		rec := &records[i]

		if !rec.Method.IsValid() {
			add(i, "method", fmt.Sprintf("mode de paiement inconnu: %q", string(rec.Method)))
		}
		if !rec.Classification.IsValid() {
			add(i, "classification", fmt.Sprintf("classification inconnue: %q", string(rec.Classification)))
		}
		if !rec.Amount.IsPositive() {
			add(i, "amount", "le montant doit être strictement positif")
		}

		switch rec.Method {
		case MethodCheque:
			if rec.CheckNumber == "" {
				add(i, "check_number", "le numéro de chèque est requis")
			}
		case MethodVirement:
			if rec.TransferReference == "" {
				add(i, "transfer_reference", "la référence de virement est requise")
			}
		case MethodMandat:
			if rec.MandateNumber == "" {
				add(i, "mandate_number", "le numéro de mandat est requis")
			}
		case MethodTraite:
			if rec.DraftDueDate == nil {
				add(i, "draft_due_date", "l'échéance de la traite est requise")
			}
		case MethodCNAM:
			if rec.BondID == nil {
				add(i, "bond_id", "la référence de la prise en charge CNAM est requise")
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
