// Package errors provides structured error handling for the Keyfold services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Seller errors
	CodeSellerEmptyName   Code = "SELLER_EMPTY_NAME"
	CodeSellerEmptyEmail  Code = "SELLER_EMPTY_EMAIL"
	CodeSellerInvalidPlan Code = "SELLER_INVALID_PLAN"

	// Storefront errors
	CodeStorefrontEmptySellerID Code = "STOREFRONT_EMPTY_SELLER_ID"
	CodeStorefrontEmptyName     Code = "STOREFRONT_EMPTY_NAME"
	CodeStorefrontInvalidTheme  Code = "STOREFRONT_INVALID_THEME"

	// Product errors
	CodeProductEmptySellerID       Code = "PRODUCT_EMPTY_SELLER_ID"
	CodeProductEmptyTitle          Code = "PRODUCT_EMPTY_TITLE"
	CodeProductNegativePrice       Code = "PRODUCT_NEGATIVE_PRICE"
	CodeProductInvalidCategory     Code = "PRODUCT_INVALID_CATEGORY"
	CodeProductInvalidDeliveryType Code = "PRODUCT_INVALID_DELIVERY_TYPE"
	CodeProductInvalidMaxKeys      Code = "PRODUCT_INVALID_MAX_KEYS"
	CodeProductNotFound            Code = "PRODUCT_NOT_FOUND"

	// Order errors
	CodeOrderEmptyProductID         Code = "ORDER_EMPTY_PRODUCT_ID"
	CodeOrderEmptyBuyerEmail        Code = "ORDER_EMPTY_BUYER_EMAIL"
	CodeOrderNegativeAmount         Code = "ORDER_NEGATIVE_AMOUNT"
	CodeOrderInvalidStatus          Code = "ORDER_INVALID_STATUS"
	CodeOrderInvalidStatusTransition Code = "ORDER_INVALID_STATUS_TRANSITION"
	CodeOrderIDMissing              Code = "ORDER_ID_MISSING"
	CodeOrderIDMalformed            Code = "ORDER_ID_MALFORMED"
	CodeOrderNotFound               Code = "ORDER_NOT_FOUND"
	CodeOrderNotPayable             Code = "ORDER_NOT_PAYABLE"

	// Payment errors
	CodePaymentInvalidProcessor Code = "PAYMENT_INVALID_PROCESSOR"
	CodePaymentInvalidStatus    Code = "PAYMENT_INVALID_STATUS"
	CodePaymentNegativeAmount   Code = "PAYMENT_NEGATIVE_AMOUNT"

	// License errors
	CodeLicenseEmptyProductID Code = "LICENSE_EMPTY_PRODUCT_ID"
	CodeLicenseEmptyOrderID   Code = "LICENSE_EMPTY_ORDER_ID"
	CodeLicenseEmptyKey       Code = "LICENSE_EMPTY_KEY"
	CodeLicenseInvalidStatus  Code = "LICENSE_INVALID_STATUS"

	// Risk errors
	CodeRiskScoreOutOfRange Code = "RISK_SCORE_OUT_OF_RANGE"
	CodeRiskInvalidAction   Code = "RISK_INVALID_ACTION"

	// Webhook errors
	CodeWebhookSignatureInvalid Code = "WEBHOOK_SIGNATURE_INVALID"
)

// HTTPStatus maps an error code to the HTTP status surfaced by the API layer.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeProductNotFound, CodeOrderNotFound:
		return http.StatusNotFound
	case CodeOrderNotPayable:
		return http.StatusConflict
	case CodeWebhookSignatureInvalid:
		return http.StatusUnauthorized
	case CodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
