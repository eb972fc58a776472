// Package models contains the GORM persistence models. They stay separate
// from domain entities so the domain packages carry no ORM tags; each model
// has ToDomain and a FromDomain constructor used by the repositories.
package models
