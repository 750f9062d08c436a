// Package validator validates request and usecase input structs.
//
// Usecases depend on the Validator interface; V10Validator is the
// go-playground/validator implementation with English messages and the
// otpcode and otppurpose rules.
package validator
