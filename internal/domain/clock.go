package domain

import "time"

// Clock provee la hora actual a los casos de uso (inyectable en tests).
type Clock func() time.Time
