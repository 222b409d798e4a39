package api

import (
	"net/http"

	"retail-api/internal/apperr"
	"retail-api/internal/models"
	"retail-api/internal/store"

	"github.com/gin-gonic/gin"
)

func clientSnapshot(client *models.Client) gin.H {
	return gin.H{
		"id":    client.ID,
		"nome":  client.Nome,
		"email": client.Email,
		"cpf":   client.CPF,
	}
}

// listClients handles GET /clients
func (h *Handler) listClients(c *gin.Context) {
	limit, offset := pagination(c)

	clients, err := h.store.ListClients(c.Request.Context(), store.ClientFilter{
		Nome:   c.Query("nome"),
		Email:  c.Query("email"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if len(clients) == 0 {
		writeError(c, apperr.NotFound("Clientes não encontrados com os parâmetros solicitados!"))
		return
	}

	snapshots := make([]gin.H, len(clients))
	for i := range clients {
		snapshots[i] = clientSnapshot(&clients[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Clientes encontrados com sucesso.",
		"total":    len(snapshots),
		"clientes": snapshots,
	})
}

// getClient handles GET /clients/:id
func (h *Handler) getClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	client, err := h.store.GetClientByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Cliente encontrado com sucesso.",
		"cliente": clientSnapshot(client),
	})
}

type createClientRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
}

// createClient handles POST /clients
func (h *Handler) createClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Nome == "" || req.Email == "" || req.CPF == "" {
		writeError(c, apperr.InvalidRequest("Informação obrigatória para cadastro não informada."))
		return
	}

	cpf := store.NormalizeCPF(req.CPF)

	exists, err := h.store.ClientExists(c.Request.Context(), req.Email, cpf, 0)
	if err != nil {
		writeError(c, err)
		return
	}
	if exists {
		writeError(c, apperr.Conflict("Cliente com essas informações já cadastrado!"))
		return
	}

	client := &models.Client{
		Nome:  req.Nome,
		Email: req.Email,
		CPF:   cpf,
	}
	if err := h.store.CreateClient(c.Request.Context(), client); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Cliente cadastrado com sucesso.",
		"cliente": clientSnapshot(client),
	})
}

// clientPatch enumerates the updatable fields of a client. Unknown
// body keys are ignored.
type clientPatch struct {
	Nome  *string `json:"nome"`
	Email *string `json:"email"`
	CPF   *string `json:"cpf"`
}

// updateClient handles PUT /clients/:id
func (h *Handler) updateClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch clientPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, apperr.InvalidRequest("Corpo da requisição inválido!").WithCause(err))
		return
	}

	ctx := c.Request.Context()

	client, err := h.store.GetClientByID(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	if patch.CPF != nil {
		cpf := store.NormalizeCPF(*patch.CPF)
		inUse, err := h.store.ClientCPFInUse(ctx, cpf, id)
		if err != nil {
			writeError(c, err)
			return
		}
		if inUse {
			writeError(c, apperr.Conflict("Cliente com esse CPF já cadastrado!"))
			return
		}
		client.CPF = cpf
	}
	if patch.Email != nil {
		inUse, err := h.store.ClientEmailInUse(ctx, *patch.Email, id)
		if err != nil {
			writeError(c, err)
			return
		}
		if inUse {
			writeError(c, apperr.Conflict("Cliente com esse email já cadastrado!"))
			return
		}
		client.Email = *patch.Email
	}
	if patch.Nome != nil {
		client.Nome = *patch.Nome
	}

	if err := h.store.UpdateClient(ctx, client); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Cliente alterado com sucesso.",
		"cliente": clientSnapshot(client),
	})
}

// deleteClient handles DELETE /clients/:id
func (h *Handler) deleteClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	client, err := h.store.GetClientByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.store.SoftDeleteClient(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Cliente deletado com sucesso.",
		"cliente": clientSnapshot(client),
	})
}
