package domain

import "time"

// AdminSession is returned by a successful admin login
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
