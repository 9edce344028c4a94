package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/fsdevblog/urlkeeper/internal/config"
	"github.com/fsdevblog/urlkeeper/internal/controllers/mocksctrl"
	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/golang/mock/gomock"
	"go.uber.org/zap"
)

type mockTestHelper struct{}

func (h *mockTestHelper) Errorf(_ string, _ ...interface{}) {}
func (h *mockTestHelper) Fatalf(_ string, _ ...interface{}) {}
func (h *mockTestHelper) Helper()                           {}

// ExampleShortURLController_Redirect переход по короткой ссылке.
func ExampleShortURLController_Redirect() {
	// Настраиваем тестовое окружение
	ctrl := gomock.NewController(new(mockTestHelper))
	defer ctrl.Finish()
	mockStore := mocksctrl.NewMockShortURLStore(ctrl)

	router := SetupRouter(RouterParams{
		Identity:   mocksctrl.NewMockIdentityProvider(ctrl),
		URLService: mockStore,
		AppConf: config.Config{
			ServerAddress: ":80",
			BaseURL:       &url.URL{Scheme: "http", Host: "test.com"},
		},
		Logger: zap.NewNop(),
	})

	mockStore.EXPECT().
		Resolve(gomock.Any(), "aB3dE9").
		Return(&models.URL{
			OriginalURL: "https://example.com/very/long/path",
			ShortCode:   "aB3dE9",
			ClickCount:  1,
		}, nil).Times(1)

	req := httptest.NewRequest(http.MethodGet, "/aB3dE9", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	fmt.Println(w.Code)
	fmt.Println(w.Header().Get("Location"))

	// Output:
	// 307
	// https://example.com/very/long/path
}
