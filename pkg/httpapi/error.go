package httpapi

import (
	"encoding/json"
	"fmt"

	pz "github.com/weberc2/httpeasy"
)

// HTTPError is the body of every non-2xx response.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (err *HTTPError) Error() string { return err.Message }

// Compare checks that `other` carries the same status. Messages embed
// wrapped error chains and are not compared.
func (err *HTTPError) Compare(other *HTTPError) error {
	if err.Status != other.Status {
		return fmt.Errorf(
			"HTTPError.Status: wanted `%d`; found `%d`",
			err.Status,
			other.Status,
		)
	}
	return nil
}

func (wanted *HTTPError) CompareData(data []byte) error {
	var other HTTPError
	if err := json.Unmarshal(data, &other); err != nil {
		return fmt.Errorf("unmarshaling `HTTPError`: %w", err)
	}
	return wanted.Compare(&other)
}

func errorBody(status int, format string, v ...interface{}) pz.Serializer {
	return pz.JSON(&HTTPError{
		Status:  status,
		Message: fmt.Sprintf(format, v...),
	})
}
