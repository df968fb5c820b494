package api

var (
	errorMessageMap = map[int64]string{
		999: "internal server error",

		1010: "invalid parameters",
		1011: "cannot parse request",

		1100: "country not found",
		1101: "unknown metric",
		1102: "ranking size must be positive",
		1103: "metric is not forecastable",

		1200: "forecast fit failed",

		1300: "no snapshot store configured",
	}

	errorInternalServer = errorJSON(999)

	errorInvalidParameters  = errorJSON(1010)
	errorCannotParseRequest = errorJSON(1011)

	errorCountryNotFound    = errorJSON(1100)
	errorUnknownMetric      = errorJSON(1101)
	errorInvalidRankingSize = errorJSON(1102)
	errorUnforecastable     = errorJSON(1103)

	errorForecastFailed = errorJSON(1200)

	errorNoSnapshotStore = errorJSON(1300)
)

type ErrorResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// errorJSON converts an error code to a standardized error object
func errorJSON(code int64) ErrorResponse {
	var message string
	if msg, ok := errorMessageMap[code]; ok {
		message = msg
	} else {
		message = "unknown"
	}

	return ErrorResponse{
		Code:    code,
		Message: message,
	}
}
