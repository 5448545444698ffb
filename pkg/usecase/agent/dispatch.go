package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

// CallCovidService posts params to the COVID-19 prediction service
func (a *Agent) CallCovidService(ctx context.Context, params model.Parameters) model.Prediction {
	return a.callService(ctx, a.covidURL+"/predict/covid", params)
}

// CallChurnService posts params to the churn prediction service
func (a *Agent) CallChurnService(ctx context.Context, params model.Parameters) model.Prediction {
	return a.callService(ctx, a.churnURL+"/predict/churn", params)
}

func (a *Agent) CallService(ctx context.Context, intent model.Intent, params model.Parameters) model.Prediction {
	switch intent {
	case model.IntentCovid:
		return a.CallCovidService(ctx, params)
	case model.IntentChurn:
		return a.CallChurnService(ctx, params)
	default:
		return model.NewErrorPrediction(intent.Validate())
	}
}

// callService never fails: any error becomes the error prediction
func (a *Agent) callService(ctx context.Context, url string, params model.Parameters) model.Prediction {
	prediction, err := a.postPrediction(ctx, url, params)
	if err != nil {
		logging.From(ctx).Error("prediction service call failed", "error", err, "url", url)
		return model.NewErrorPrediction(err)
	}
	return prediction
}

func (a *Agent) postPrediction(ctx context.Context, url string, params model.Parameters) (model.Prediction, error) {
	if params == nil {
		params = model.Parameters{}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body, err := json.Marshal(params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal parameters")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", url))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call prediction service", goerr.V("url", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, goerr.New("prediction service returned "+resp.Status,
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)))
	}

	var prediction model.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, goerr.Wrap(err, "failed to decode prediction", goerr.V("url", url))
	}
	if prediction == nil {
		return nil, goerr.New("empty prediction", goerr.V("url", url))
	}

	return prediction, nil
}
