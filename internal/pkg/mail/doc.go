// Package mail sends rendered email through a provider behind the Mail
// interface. SMTP is the only provider.
package mail
