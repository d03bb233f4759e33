package config

// How the configuration is assembled and consumed:
//
// Loading with every source applied (flags > env > .env > file > defaults):
//
//     cfg, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// Pointing at an explicit config file:
//
//     cfg, err := config.Load("/path/to/config.yaml", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// Passing command line flag values through:
//
//     flags := map[string]interface{}{
//         "output": "./reports",
//         "concurrency": 2,
//         "max-attempts": 5,
//         "images": true,
//         "log-level": "debug",
//     }
//     cfg, err := config.Load("", flags)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// Building a Config in code:
//
//     cfg := config.DefaultConfig()
//     cfg.Browser.Headless = false
//     cfg.Orchestrator.Concurrency = 2
//     cfg.Images.Enabled = true
//
//     if err := cfg.Validate(); err != nil {
//         log.Fatal(err)
//     }
//
// Writing the effective configuration back out:
//
//     if err := cfg.Save(".xscraper.yaml"); err != nil {
//         log.Fatal(err)
//     }
//
// Environment overrides:
//
//     export XSCRAPER_HEADLESS="false"
//     export XSCRAPER_CONTROL_URL="ws://127.0.0.1:9222"
//     export XSCRAPER_NAVIGATION_TIMEOUT="90s"
//     export XSCRAPER_CONCURRENCY="2"
//     export XSCRAPER_MAX_ATTEMPTS="5"
//     export XSCRAPER_IMAGES_ENABLED="true"
//     export XSCRAPER_OUTPUT_DIR="./reports"
//     export XSCRAPER_LOG_LEVEL="debug"
//
// Session cookies are not part of the configuration. They come from the
// pkg/auth credential store or from XSCRAPER_AUTH_TOKEN and
// XSCRAPER_CSRF_TOKEN.
