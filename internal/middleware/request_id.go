// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/constants"
)

// RequestIDMiddleware stores the caller's X-REQUEST-ID in the request context,
// generating one when the header is missing, and echoes it on the response.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constants.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(constants.RequestIDHeader, requestID)
			ctx := context.WithValue(r.Context(), constants.RequestIDContextID, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
