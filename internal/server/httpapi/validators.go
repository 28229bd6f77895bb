package httpapi

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidators sync.Once

// registerBindingValidators adds the custom tags used by the request DTOs to
// gin's validator:
//
//	maxbytes=N  string is at most N bytes long (max=N counts runes)
func registerBindingValidators() {
	registerValidators.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
			panic(err)
		}
	})
}

func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic("maxbytes: bad parameter " + fl.Param())
	}
	return len(fl.Field().String()) <= n
}
