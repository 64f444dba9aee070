// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api holds the contracts shared by every hioload-aio component:
// the closed error taxonomy and the raw non-blocking resource interfaces.
package api
