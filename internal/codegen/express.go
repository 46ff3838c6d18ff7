package codegen

import "text/template"

// expressTemplate proxies the mock endpoint through an Express router so a
// frontend under development can swap in the real API later by changing one
// base URL.
var expressTemplate = template.Must(template.New("express").Parse(`const express = require('express');
const router = express.Router();

const BASE_URL = '{{.URL}}';
{{if .AllowGet}}
router.get('/{{.Name}}', async (req, res) => {
  const response = await fetch(BASE_URL);
  res.status(response.status).json(await response.json());
});
{{end}}{{if .AllowGetByID}}
router.get('/{{.Name}}/:id', async (req, res) => {
  const response = await fetch(` + "`${BASE_URL}/${req.params.id}`" + `);
  res.status(response.status).json(await response.json());
});
{{end}}{{if .AllowPost}}
router.post('/{{.Name}}', async (req, res) => {
  const response = await fetch(BASE_URL, {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify(req.body),
  });
  res.status(response.status).json(await response.json());
});
{{end}}{{if .AllowPut}}
router.put('/{{.Name}}/:id', async (req, res) => {
  const response = await fetch(` + "`${BASE_URL}/${req.params.id}`" + `, {
    method: 'PUT',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify(req.body),
  });
  res.status(response.status).json(await response.json());
});
{{end}}{{if .AllowDelete}}
router.delete('/{{.Name}}/:id', async (req, res) => {
  const response = await fetch(` + "`${BASE_URL}/${req.params.id}`" + `, { method: 'DELETE' });
  res.sendStatus(response.status);
});
{{end}}
module.exports = router;
`))
