package app

import "time"

// DefaultAutoPassDelay is how long other seats get to react to an unbeatable play before they are passed for.
const DefaultAutoPassDelay = 5 * time.Second

// historyTimeout bounds each asynchronous ActionLog append.
const historyTimeout = 2 * time.Second
