// SPDX-License-Identifier: EPL-2.0

package aiff_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/mixbridge/formats/aiff"
)

func ExampleDecoder_Decode_errorHandling() {
	_, err := aiff.Decoder{}.Decode(bytes.NewReader([]byte("FORM....not really")))
	fmt.Println(errors.Is(err, aiff.ErrNotAiffFile))

	// Output:
	// true
}
