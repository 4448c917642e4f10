// SPDX-License-Identifier: EPL-2.0

package mp3_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/mixbridge/formats/mp3"
)

func ExampleDecoder_Decode_errorHandling() {
	_, err := mp3.Decoder{}.Decode(bytes.NewReader([]byte("not an mp3 file")))
	if errors.Is(err, mp3.ErrNotMP3File) {
		fmt.Println("rejected")
	}

	// Output:
	// rejected
}
